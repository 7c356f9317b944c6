package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// EtherealAPIURL hands out disposable SMTP accounts.
	EtherealAPIURL = "https://api.nodemailer.com/user"
	etherealWeb    = "https://ethereal.email"
	requestor      = "meeting-notifier"
)

// EtherealAccount is a disposable mailbox: everything sent through it is
// captured and viewable on the web, nothing is delivered.
type EtherealAccount struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
	SMTP   struct {
		Host   string `json:"host"`
		Port   int    `json:"port"`
		Secure bool   `json:"secure"`
	} `json:"smtp"`
	Web string `json:"web"`
}

// ProvisionEthereal requests a fresh test account.
func ProvisionEthereal(ctx context.Context, client *http.Client) (*EtherealAccount, error) {
	payload, err := json.Marshal(map[string]string{"requestor": requestor, "version": "1"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, EtherealAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request test account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get test account, status: %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var account EtherealAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode test account: %w", err)
	}
	if account.Status != "success" {
		return nil, fmt.Errorf("test account refused: %s", account.Error)
	}
	if account.Web == "" {
		account.Web = etherealWeb
	}
	return &account, nil
}

// Channel returns an SMTP channel bound to the account, with preview links enabled.
func (a *EtherealAccount) Channel() *SMTPChannel {
	return &SMTPChannel{
		Host:        a.SMTP.Host,
		Port:        a.SMTP.Port,
		Secure:      a.SMTP.Secure,
		User:        a.User,
		Pass:        a.Pass,
		PreviewBase: a.Web,
	}
}
