package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// ChanEmitter — стандартная реализация Emitter через канал.
//
// Thread-safe.
// Используется как дефолтная реализация в pkg/session.
type ChanEmitter struct {
	mu      sync.RWMutex
	ch      chan Event
	closed  bool
	lossy   bool
	dropped atomic.Int64
}

// NewChanEmitter создаёт новый ChanEmitter с буферизованным каналом.
//
// buffer определяет размер буфера канала.
// Если buffer = 0, канал будет небуферизованным (blocking).
func NewChanEmitter(buffer int) *ChanEmitter {
	return &ChanEmitter{
		ch: make(chan Event, buffer),
	}
}

// NewLossyChanEmitter создаёт ChanEmitter, который не блокируется:
// при заполненном буфере событие отбрасывается.
//
// Подходит для TUI, где важна только последняя картина, а не каждое событие.
func NewLossyChanEmitter(buffer int) *ChanEmitter {
	e := NewChanEmitter(buffer)
	e.lossy = true
	return e
}

// Emit отправляет событие в канал.
//
// Thread-safe.
// Rule 11: уважает context.Context.
// Если канал закрыт или context отменён, событие не отправляется.
func (e *ChanEmitter) Emit(ctx context.Context, event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	if e.lossy {
		select {
		case e.ch <- event:
		default:
			e.dropped.Add(1)
		}
		return
	}

	select {
	case e.ch <- event:
		// Успешно отправлено
	case <-ctx.Done():
		// Context отменён
	}
}

// Dropped возвращает число отброшенных событий (только для lossy режима).
func (e *ChanEmitter) Dropped() int64 {
	return e.dropped.Load()
}

// Subscribe возвращает Subscriber для чтения событий.
//
// Thread-safe.
// Все подписчики читают из одного канала: каждое событие получает
// ровно один из них.
func (e *ChanEmitter) Subscribe() Subscriber {
	return &chanSubscriber{ch: e.ch}
}

// Close закрывает канал и освобождает ресурсы.
//
// Thread-safe.
// После закрытия Emit больше не отправляет события.
func (e *ChanEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

// chanSubscriber реализует Subscriber интерфейс.
type chanSubscriber struct {
	ch <-chan Event
}

// Events возвращает read-only канал событий.
func (s *chanSubscriber) Events() <-chan Event {
	return s.ch
}

// Close закрывает подписчика (no-op для shared channel).
//
// Реальный канал закрывается только через ChanEmitter.Close().
func (s *chanSubscriber) Close() {}

// Ensure ChanEmitter implements Emitter
var _ Emitter = (*ChanEmitter)(nil)

// Ensure chanSubscriber implements Subscriber
var _ Subscriber = (*chanSubscriber)(nil)
