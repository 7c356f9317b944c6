package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"meeting-notifier/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	StreamName       = "MEETINGS"
	StreamSubj       = "MEETINGS.*"
	SubjectProcessed = "MEETINGS.processed"
)

// Setup connects to NATS and makes sure the MEETINGS stream exists.
func Setup(natsURL string, log zerolog.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(natsURL, nats.Name("meeting-notifier"))
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("error creating JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{StreamSubj},
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not create stream (it likely already exists)")
	}

	return nc, js, nil
}

type publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher emits one event per processed meeting.
type Publisher struct {
	js publisher
}

func NewPublisher(js nats.JetStreamContext) *Publisher {
	return &Publisher{js: js}
}

// Record publishes rec on MEETINGS.processed. The request id doubles as the
// JetStream message id so redelivered publishes are deduplicated.
func (p *Publisher) Record(_ context.Context, rec models.DispatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal meeting event: %w", err)
	}
	if _, err := p.js.Publish(SubjectProcessed, data, nats.MsgId(rec.RequestID)); err != nil {
		return fmt.Errorf("failed to publish meeting event: %w", err)
	}
	return nil
}
