package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"

	"meeting-notifier/internal/config"
	"meeting-notifier/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDispatch wraps every failure returned by Dispatcher.Send.
	ErrDispatch     = errors.New("email dispatch failed")
	ErrNoRecipients = errors.New("no recipients")
)

// Outcome of a successful send. PreviewURL is only set for ephemeral channels.
type Outcome struct {
	PreviewURL string
	Rejected   []string
}

// Resolver builds the channel for a transport. It runs at most once per
// successful resolution.
type Resolver func(ctx context.Context, transport config.MailTransport) (Channel, error)

// Dispatcher sends summary mails through a lazily resolved, shared channel.
type Dispatcher struct {
	transport config.MailTransport
	from      mail.Address
	resolve   Resolver
	log       zerolog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	channel Channel
}

type Option func(*Dispatcher)

// WithResolver replaces the default channel resolver.
func WithResolver(r Resolver) Option {
	return func(d *Dispatcher) { d.resolve = r }
}

func NewDispatcher(transport config.MailTransport, from mail.Address, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		from:      from,
		resolve:   DefaultResolver(&http.Client{}),
		log:       log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultResolver maps a real transport to a plain SMTP channel and an
// ephemeral one to a freshly provisioned Ethereal account.
func DefaultResolver(httpClient *http.Client) Resolver {
	return func(ctx context.Context, transport config.MailTransport) (Channel, error) {
		switch t := transport.(type) {
		case config.RealTransport:
			return &SMTPChannel{Host: t.Host, Port: t.Port, Secure: t.Secure, User: t.User, Pass: t.Pass}, nil
		case config.EphemeralTransport:
			account, err := ProvisionEthereal(ctx, httpClient)
			if err != nil {
				return nil, err
			}
			return account.Channel(), nil
		default:
			return nil, fmt.Errorf("unsupported mail transport %T", transport)
		}
	}
}

// Send mails body to all recipients in one message. Every error wraps ErrDispatch.
func (d *Dispatcher) Send(ctx context.Context, recipients []string, subject, body string) (Outcome, error) {
	start := time.Now()
	outcome, err := d.send(ctx, recipients, subject, body)
	metrics.ObserveSend(time.Since(start), err)
	return outcome, err
}

func (d *Dispatcher) send(ctx context.Context, recipients []string, subject, body string) (Outcome, error) {
	if len(recipients) == 0 {
		return Outcome{}, fmt.Errorf("%w: %w", ErrDispatch, ErrNoRecipients)
	}

	ch, err := d.channelFor(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to resolve mail channel")
		return Outcome{}, fmt.Errorf("%w: resolve channel: %w", ErrDispatch, err)
	}

	receipt, err := ch.Send(ctx, Message{
		From:    d.from,
		To:      recipients,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		d.log.Error().Err(err).Strs("recipients", recipients).Msg("failed to send summary email")
		return Outcome{}, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	if len(receipt.Rejected) > 0 {
		d.log.Warn().Strs("rejected", receipt.Rejected).Msg("some recipients were refused by the mail server")
	}
	if receipt.PreviewURL != "" {
		d.log.Info().Str("preview_url", receipt.PreviewURL).Msg("summary email captured by test inbox")
	} else {
		d.log.Info().Str("to", strings.Join(recipients, ", ")).Msg("summary email sent")
	}
	return Outcome{PreviewURL: receipt.PreviewURL, Rejected: receipt.Rejected}, nil
}

// channelFor returns the cached channel, resolving it on first use. Concurrent
// first callers share a single resolution; a failed resolution is not cached.
func (d *Dispatcher) channelFor(ctx context.Context) (Channel, error) {
	if ch := d.cached(); ch != nil {
		return ch, nil
	}

	v, err, _ := d.group.Do("channel", func() (any, error) {
		if ch := d.cached(); ch != nil {
			return ch, nil
		}
		ch, err := d.resolve(context.WithoutCancel(ctx), d.transport)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, errors.New("resolver returned no channel")
		}
		d.mu.Lock()
		d.channel = ch
		d.mu.Unlock()
		d.log.Info().Str("transport", transportName(d.transport)).Msg("mail channel ready")
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Channel), nil
}

func (d *Dispatcher) cached() Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.channel
}

func transportName(t config.MailTransport) string {
	switch t.(type) {
	case config.RealTransport:
		return "smtp"
	case config.EphemeralTransport:
		return "ethereal"
	default:
		return "unknown"
	}
}
