package mailer

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meeting-notifier/internal/config"
	"meeting-notifier/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureChannel struct {
	mu      sync.Mutex
	sent    []Message
	receipt Receipt
	err     error
}

func (c *captureChannel) Send(_ context.Context, msg Message) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.receipt, c.err
}

var from = mail.Address{Name: "AI Summary Bot", Address: "ai-test@voicely.com"}

func staticResolver(ch Channel, calls *int32) Resolver {
	return func(context.Context, config.MailTransport) (Channel, error) {
		atomic.AddInt32(calls, 1)
		return ch, nil
	}
}

func TestDispatcher_Send(t *testing.T) {
	ch := &captureChannel{}
	var calls int32
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(staticResolver(ch, &calls)))

	out, err := d.Send(context.Background(), []string{"a@x.com", "b@x.com"}, "Resumen", "<h2>hola</h2>")

	require.NoError(t, err)
	assert.Empty(t, out.PreviewURL)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, Message{From: from, To: []string{"a@x.com", "b@x.com"}, Subject: "Resumen", HTML: "<h2>hola</h2>"}, ch.sent[0])
}

func TestDispatcher_PreviewURL(t *testing.T) {
	ch := &captureChannel{receipt: Receipt{PreviewURL: "https://ethereal.email/message/abc"}}
	var calls int32
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(staticResolver(ch, &calls)))

	out, err := d.Send(context.Background(), []string{"a@x.com"}, "s", "b")

	require.NoError(t, err)
	assert.Equal(t, "https://ethereal.email/message/abc", out.PreviewURL)
}

func TestDispatcher_PartialRejectionIsSuccess(t *testing.T) {
	ch := &captureChannel{receipt: Receipt{Rejected: []string{"bogus@"}}}
	var calls int32
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(staticResolver(ch, &calls)))

	out, err := d.Send(context.Background(), []string{"a@x.com", "bogus@"}, "s", "b")

	require.NoError(t, err)
	assert.Equal(t, []string{"bogus@"}, out.Rejected)
}

func TestDispatcher_NoRecipients(t *testing.T) {
	var calls int32
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(staticResolver(&captureChannel{}, &calls)))

	_, err := d.Send(context.Background(), nil, "s", "b")

	assert.ErrorIs(t, err, ErrDispatch)
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestDispatcher_SendFailurePropagates(t *testing.T) {
	sendErr := errors.New("550 mailbox unavailable")
	var calls int32
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(staticResolver(&captureChannel{err: sendErr}, &calls)))

	_, err := d.Send(context.Background(), []string{"a@x.com"}, "s", "b")

	assert.ErrorIs(t, err, ErrDispatch)
	assert.ErrorIs(t, err, sendErr)
}

func TestDispatcher_ResolutionFailureIsNotCached(t *testing.T) {
	ch := &captureChannel{}
	var calls int32
	resolveErr := errors.New("ethereal unreachable")
	resolver := func(context.Context, config.MailTransport) (Channel, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, resolveErr
		}
		return ch, nil
	}
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(resolver))

	_, err := d.Send(context.Background(), []string{"a@x.com"}, "s", "b")
	assert.ErrorIs(t, err, ErrDispatch)
	assert.ErrorIs(t, err, resolveErr)

	_, err = d.Send(context.Background(), []string{"a@x.com"}, "s", "b")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDispatcher_ChannelResolvedOnce(t *testing.T) {
	ch := &captureChannel{}
	var calls int32
	release := make(chan struct{})
	resolver := func(context.Context, config.MailTransport) (Channel, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return ch, nil
	}
	d := NewDispatcher(config.EphemeralTransport{}, from, logger.Nop(), WithResolver(resolver))

	const senders = 20
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Send(context.Background(), []string{"a@x.com"}, "s", "b")
			errs <- err
		}()
	}

	// give every goroutine a chance to block on the in-flight resolution
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Len(t, ch.sent, senders)

	_, err := d.Send(context.Background(), []string{"a@x.com"}, "s", "b")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDefaultResolver_Real(t *testing.T) {
	resolve := DefaultResolver(nil)
	ch, err := resolve(context.Background(), config.RealTransport{Host: "smtp.example.com", Port: 465, Secure: true, User: "u", Pass: "p"})

	require.NoError(t, err)
	smtpCh, ok := ch.(*SMTPChannel)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com", smtpCh.Host)
	assert.True(t, smtpCh.Secure)
	assert.Empty(t, smtpCh.PreviewBase)
}
