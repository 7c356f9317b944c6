package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one HTML email addressed to all recipients at once.
type Message struct {
	From    mail.Address
	To      []string
	Subject string
	HTML    string
}

// Receipt is what the channel learned from the server about a sent message.
type Receipt struct {
	PreviewURL string
	// Rejected lists recipients the server refused while others were accepted.
	Rejected []string
}

// Channel delivers messages.
type Channel interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

var msgIDPattern = regexp.MustCompile(`MSGID=([^\s\]]+)`)

// SMTPChannel sends mail over SMTP, upgrading with STARTTLS when offered.
type SMTPChannel struct {
	Host   string
	Port   int
	Secure bool // implicit TLS
	User   string
	Pass   string

	// PreviewBase, when set, turns the server's MSGID reply into a preview link.
	PreviewBase string

	tlsConfig *tls.Config
}

func (c *SMTPChannel) Send(ctx context.Context, msg Message) (Receipt, error) {
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	conn, err := c.dial(ctx, addr)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		conn.Close()
		return Receipt{}, fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if !c.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(c.clientTLSConfig()); err != nil {
				return Receipt{}, fmt.Errorf("starttls failed: %w", err)
			}
		}
	}
	if c.User != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", c.User, c.Pass, c.Host)); err != nil {
				return Receipt{}, fmt.Errorf("smtp auth failed: %w", err)
			}
		}
	}

	if err := client.Mail(msg.From.Address); err != nil {
		return Receipt{}, fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	var rejected []string
	var lastErr error
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			rejected = append(rejected, rcpt)
			lastErr = err
		}
	}
	if len(rejected) > 0 && len(rejected) == len(msg.To) {
		return Receipt{}, fmt.Errorf("all recipients rejected (%s): %w", strings.Join(rejected, ", "), lastErr)
	}

	raw, err := buildMessage(msg, c.Host)
	if err != nil {
		return Receipt{}, err
	}
	reply, err := writeData(client, raw)
	if err != nil {
		return Receipt{}, fmt.Errorf("DATA failed: %w", err)
	}
	_ = client.Quit()

	receipt := Receipt{Rejected: rejected}
	if c.PreviewBase != "" {
		if m := msgIDPattern.FindStringSubmatch(reply); m != nil {
			receipt.PreviewURL = strings.TrimRight(c.PreviewBase, "/") + "/message/" + m[1]
		}
	}
	return receipt, nil
}

func (c *SMTPChannel) dial(ctx context.Context, addr string) (net.Conn, error) {
	if c.Secure {
		d := &tls.Dialer{Config: c.clientTLSConfig()}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func (c *SMTPChannel) clientTLSConfig() *tls.Config {
	if c.tlsConfig != nil {
		return c.tlsConfig
	}
	return &tls.Config{ServerName: c.Host, MinVersion: tls.VersionTLS12}
}

// writeData runs the DATA phase by hand so the final server reply, which
// carries the message id on test servers, is not thrown away.
func writeData(client *smtp.Client, raw []byte) (string, error) {
	id, err := client.Text.Cmd("DATA")
	if err != nil {
		return "", err
	}
	client.Text.StartResponse(id)
	_, _, err = client.Text.ReadResponse(354)
	client.Text.EndResponse(id)
	if err != nil {
		return "", err
	}

	w := client.Text.DotWriter()
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	_, reply, err := client.Text.ReadResponse(250)
	return reply, err
}

func buildMessage(msg Message, host string) ([]byte, error) {
	var body bytes.Buffer
	qp := quotedprintable.NewWriter(&body)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	header("From", msg.From.String())
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("UTF-8", msg.Subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), host))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}
