package eventbus

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Nop publisher, используемый при выключенных событиях
type Nop struct{}

// Publish ничего не делает
func (Nop) Publish(context.Context, *domain.Reservation, []domain.TimelineEntry) error {
	return nil
}

// Recorder запоминает события в памяти (для тестов)
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

// Publish сохраняет события или возвращает Err, если он задан
func (r *Recorder) Publish(_ context.Context, res *domain.Reservation, entries []domain.TimelineEntry) error {
	if r.Err != nil {
		return r.Err
	}

	events, err := NewEvents(res, entries)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events возвращает копию сохраненных событий
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
