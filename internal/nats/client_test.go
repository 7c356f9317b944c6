package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"meeting-notifier/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJetStream struct {
	subject string
	data    []byte
	opts    int
	err     error
}

func (f *fakeJetStream) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	f.subject, f.data, f.opts = subj, data, len(opts)
	if f.err != nil {
		return nil, f.err
	}
	return &nats.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func TestPublisher_Record(t *testing.T) {
	js := &fakeJetStream{}
	p := &Publisher{js: js}
	rec := models.DispatchRecord{
		RequestID:  "req-1",
		MeetingID:  "m-1",
		Recipients: []string{"a@x.com"},
		Subject:    "[Voicely] Resumen de la Reunión m-1",
		Outcome:    models.OutcomeSent,
		CreatedAt:  time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Record(context.Background(), rec))

	assert.Equal(t, SubjectProcessed, js.subject)
	assert.Equal(t, 1, js.opts)
	var got models.DispatchRecord
	require.NoError(t, json.Unmarshal(js.data, &got))
	assert.Equal(t, rec, got)
}

func TestPublisher_RecordError(t *testing.T) {
	p := &Publisher{js: &fakeJetStream{err: errors.New("no responders")}}

	err := p.Record(context.Background(), models.DispatchRecord{RequestID: "req-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
}
