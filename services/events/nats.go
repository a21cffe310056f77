// Package eventsvc publishes domain events.
package eventsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

type natsPublisher struct {
	nc *nats.Conn
}

var _ core.Publisher = (*natsPublisher)(nil)

func NewNatsPublisher(nc *nats.Conn) *natsPublisher {
	return &natsPublisher{nc: nc}
}

// Connect opens the connection to the NATS server at url. It keeps retrying in the background when the
// server is not up yet.
func Connect(url, name string, logger core.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			var subject string
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error(fmt.Sprintf("nats client error, sub: %v", subject), err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats client disconnected", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats client reconnected")
		}),
	)
	return nc, errors.Wrap(err, "connecting to nats")
}

// New returns a NATS publisher when a server URL is configured, a log-only publisher otherwise.
func New(conf *core.Config, logger core.Logger) (core.Publisher, func(), error) {
	if conf.Nats.URL == "" {
		return NewLogPublisher(logger), func() {}, nil
	}
	nc, err := Connect(conf.Nats.URL, conf.AppName, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewNatsPublisher(nc), func() { _ = nc.Drain() }, nil
}

// Publish sends payload as JSON on subject.
func (p *natsPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encoding %s event", subject)
	}
	return errors.Wrapf(p.nc.Publish(subject, data), "publishing %s event", subject)
}
