// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события сессии мастера паттернов:
// запуск и завершение анализа выборки, изменения состояния, результаты
// валидации. Позволяет подключать любые UI (TUI, CLI) без изменения
// логики пакета session.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI.
//
// # Basic Usage
//
//	// В библиотеке (pkg/session/):
//	emitter := events.NewChanEmitter(64)
//	s := session.New(session.Options{Emitter: emitter})
//
//	// В UI (internal/ui/):
//	for event := range emitter.Subscribe().Events() {
//	    switch event.Type {
//	    case events.EventAnalysisStarted:
//	        ui.showSpinner()
//	    case events.EventValidated:
//	        ui.refreshPanel(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
//
// # Rule 11: Context Propagation
//
// Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события сессии.
type EventType string

const (
	// EventAnalysisStarted отправляется при запуске анализа выборки.
	EventAnalysisStarted EventType = "analysis_started"

	// EventAnalysisCompleted отправляется когда анализ завершился успешно.
	EventAnalysisCompleted EventType = "analysis_completed"

	// EventAnalysisCanceled отправляется когда анализ отменён
	// (новой выборкой или закрытием сессии).
	EventAnalysisCanceled EventType = "analysis_canceled"

	// EventStateChanged отправляется после каждого изменения состояния.
	EventStateChanged EventType = "state_changed"

	// EventValidated отправляется после пересчёта валидации.
	EventValidated EventType = "validated"

	// EventCustomTokensReloaded отправляется после перезагрузки
	// пользовательских токенов.
	EventCustomTokensReloaded EventType = "custom_tokens_reloaded"

	// EventError отправляется при ошибке.
	EventError EventType = "error"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// AnalysisData содержит данные для событий анализа.
type AnalysisData struct {
	RunID    string
	Files    int
	Duration time.Duration
}

func (AnalysisData) eventData() {}

// StateData содержит данные для EventStateChanged.
type StateData struct {
	Revision uint64
	Change   string
}

func (StateData) eventData() {}

// ValidationData содержит сводку для EventValidated.
type ValidationData struct {
	Revision uint64
	Errors   int
	Warnings int
	Blocked  bool
}

func (ValidationData) eventData() {}

// CustomTokensData содержит данные для EventCustomTokensReloaded.
type CustomTokensData struct {
	Count int
	Path  string
}

func (CustomTokensData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event представляет событие сессии.
//
// Data содержит типизированные данные события (EventData):
//   - EventAnalysisStarted, EventAnalysisCompleted, EventAnalysisCanceled: AnalysisData
//   - EventStateChanged: StateData
//   - EventValidated: ValidationData
//   - EventCustomTokensReloaded: CustomTokensData
//   - EventError: ErrorData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: pkg/session зависит от этого
// интерфейса, а не от конкретного UI.
//
// Rule 11: все операции должны уважать context.Context.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
//
// Rule 5: thread-safe операции.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при вызове Close() у эмиттера.
	Events() <-chan Event

	// Close освобождает ресурсы подписчика.
	Close()
}
