package audit

import (
	"context"
	"errors"
	"time"

	dErrors "patrolboard/pkg/domain-errors"
)

// Emitter is anything that can take an audit event.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// ChannelPublisher hands events to the Worker through a bounded inbox, so
// the roster mutation path never waits on the audit store. A full inbox
// drops the event with an error; the caller treats audit as best-effort.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return dErrors.New(dErrors.CodeUnavailable, "audit inbox is full")
	}
}

// Fanout emits to every sink and joins the failures.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
