package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ilkoid/poncho-patterns/pkg/tokens"
)

// AnalysisStatus — терминальный статус запуска анализа.
type AnalysisStatus string

const (
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisCanceled  AnalysisStatus = "canceled"
	AnalysisFailed    AnalysisStatus = "failed"
)

// AnalysisOutcome — единственный терминальный результат запуска.
type AnalysisOutcome struct {
	RunID    string
	Status   AnalysisStatus
	Analysis *tokens.TokenAnalysis
	Err      error
	Files    int
	Duration time.Duration
}

type analysisRun struct {
	id      string
	cancel  context.CancelFunc
	done    chan struct{}
	outcome AnalysisOutcome
}

// AnalysisRunner выполняет анализ выборки в фоне.
//
// Одновременно выполняется не более одного запуска: Start отменяет
// предыдущий и ждёт его завершения. Каждый запуск завершается ровно
// одним AnalysisOutcome, переданным в onDone.
type AnalysisRunner struct {
	startMu sync.Mutex // сериализует Start

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	current *analysisRun
	onDone  func(AnalysisOutcome)
}

// NewAnalysisRunner создаёт runner. onDone вызывается в горутине запуска
// и не должен вызывать Start того же runner.
func NewAnalysisRunner(onDone func(AnalysisOutcome)) *AnalysisRunner {
	return &AnalysisRunner{
		entropy: ulid.Monotonic(rand.Reader, 0),
		onDone:  onDone,
	}
}

func (r *AnalysisRunner) newRunID(t time.Time) string {
	id, err := ulid.New(ulid.Timestamp(t), r.entropy)
	if err != nil {
		return fmt.Sprintf("run-%d", t.UnixNano())
	}
	return id.String()
}

// Start запускает анализ names и возвращает идентификатор запуска.
//
// Ожидание предыдущего запуска идёт без r.mu: Running, Cancel и Wait
// в это время не блокируются.
func (r *AnalysisRunner) Start(ctx context.Context, tz *tokens.Tokenizer, names []string) string {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	r.mu.Lock()
	prev := r.current
	r.mu.Unlock()
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &analysisRun{
		id:     r.newRunID(time.Now()),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.mu.Lock()
	r.current = run
	r.mu.Unlock()

	input := append([]string(nil), names...)
	go r.execute(runCtx, run, tz, input)
	return run.id
}

func (r *AnalysisRunner) execute(ctx context.Context, run *analysisRun, tz *tokens.Tokenizer, names []string) {
	defer close(run.done)
	defer run.cancel()

	start := time.Now()
	a, err := tz.AnalyzeContext(ctx, names)
	out := AnalysisOutcome{
		RunID:    run.id,
		Files:    len(names),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Status = AnalysisCanceled
		out.Err = err
	case err != nil:
		out.Status = AnalysisFailed
		out.Err = err
	default:
		out.Status = AnalysisCompleted
		out.Analysis = a
	}
	run.outcome = out

	if r.onDone != nil {
		r.onDone(out)
	}
}

// Cancel отменяет текущий запуск, если он есть.
func (r *AnalysisRunner) Cancel() {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run != nil {
		run.cancel()
	}
}

// Running сообщает, выполняется ли запуск.
func (r *AnalysisRunner) Running() bool {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run == nil {
		return false
	}
	select {
	case <-run.done:
		return false
	default:
		return true
	}
}

// Wait ждёт завершения последнего запуска. false — запусков не было
// или ctx отменён раньше.
func (r *AnalysisRunner) Wait(ctx context.Context) (AnalysisOutcome, bool) {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run == nil {
		return AnalysisOutcome{}, false
	}
	select {
	case <-run.done:
		return run.outcome, true
	case <-ctx.Done():
		return AnalysisOutcome{}, false
	}
}
