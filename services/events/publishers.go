package eventsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/trezcool/chikoro/core"
)

type logPublisher struct {
	logger core.Logger
}

var _ core.Publisher = (*logPublisher)(nil)

// NewLogPublisher logs the events instead of sending them anywhere.
func NewLogPublisher(logger core.Logger) core.Publisher {
	return &logPublisher{logger: logger}
}

func (p *logPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.logger.Debug(fmt.Sprintf("event %s: %s", subject, data))
	return nil
}

// Event is a published event, as kept by Recorder.
type Event struct {
	Subject string
	Payload interface{}
}

// Recorder keeps the published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ core.Publisher = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, subject string, payload interface{}) error {
	r.mu.Lock()
	r.events = append(r.events, Event{Subject: subject, Payload: payload})
	r.mu.Unlock()
	return nil
}

// Events returns the events published on subject, or all of them when subject is empty.
func (r *Recorder) Events(subject string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if subject == "" || e.Subject == subject {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
