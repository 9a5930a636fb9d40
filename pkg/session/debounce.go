package session

import (
	"sync"
	"time"
)

// DefaultDebounce — период тишины перед пересчётом валидации.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer откладывает вызов fn до окончания периода тишины.
//
// Каждый Trigger перезапускает таймер; повторные вызовы внутри окна
// схлопываются в один запуск fn. Thread-safe.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool
}

// NewDebouncer создаёт Debouncer. delay <= 0 заменяется на DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Delay возвращает период тишины.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger (пере)запускает таймер.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.fn()
}

// Pending сообщает, что есть отложенный вызов.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel отменяет отложенный вызов, не вызывая fn.
// Возвращает true, если вызов был отложен.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	was := d.pending
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	return was
}

// Stop отменяет отложенный вызов и запрещает новые.
func (d *Debouncer) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
