package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultFromAddress is used when no EMAIL_USER is configured.
	DefaultFromAddress = "ai-test@voicely.com"
	DefaultMailPort    = 587
	implicitTLSPort    = 465
)

var validate = validator.New()

type Config struct {
	Port     string `env:"PORT,default=3004"`
	AppEnv   string `env:"APP_ENV,default=production"`
	LogLevel string `env:"LOG_LEVEL"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL,default=https://generativelanguage.googleapis.com/v1beta/openai"`

	MailHost      string `env:"MAIL_HOST"`
	MailPort      string `env:"MAIL_PORT"`
	EmailUser     string `env:"EMAIL_USER"`
	EmailPass     string `env:"EMAIL_PASS"`
	MailFromName  string `env:"MAIL_FROM_NAME,default=AI Summary Bot"`
	SubjectPrefix string `env:"SUBJECT_PREFIX,default=[Voicely]"`

	DBDriver string `env:"DB_DRIVER,default=postgres"`
	DBDSN    string `env:"DB_DSN"`
	NATSURL  string `env:"NATS_URL"`

	DDEnv     string `env:"DD_ENV"`
	DDService string `env:"DD_SERVICE,default=meeting-notifier"`

	MaxBodySize string `env:"MAX_BODY_SIZE,default=50M"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.Port == "" {
		return nil, errors.New("PORT must not be empty")
	}
	return &cfg, nil
}

// MailTransport is either RealTransport or EphemeralTransport.
type MailTransport interface {
	mailTransport()
}

// RealTransport is a persistent SMTP server reached with fixed credentials.
type RealTransport struct {
	Host   string `validate:"required"`
	Port   int    `validate:"min=1,max=65535"`
	Secure bool
	User   string `validate:"required"`
	Pass   string
}

// EphemeralTransport asks for a disposable test account on first use.
type EphemeralTransport struct{}

func (RealTransport) mailTransport()      {}
func (EphemeralTransport) mailTransport() {}

// MailTransport decides once which kind of mail channel the process uses.
// Real SMTP needs both MAIL_HOST and EMAIL_USER, anything less falls back to
// an ephemeral account.
func (c *Config) MailTransport() (MailTransport, error) {
	if c.MailHost == "" || c.EmailUser == "" {
		return EphemeralTransport{}, nil
	}

	port := c.SMTPPort()
	t := RealTransport{
		Host:   c.MailHost,
		Port:   port,
		Secure: port == implicitTLSPort,
		User:   c.EmailUser,
		Pass:   c.EmailPass,
	}
	if err := validate.Struct(t); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return t, nil
}

// SMTPPort parses MAIL_PORT. Empty, zero or non-numeric values fall back to 587.
func (c *Config) SMTPPort() int {
	port, err := strconv.Atoi(strings.TrimSpace(c.MailPort))
	if err != nil || port == 0 {
		return DefaultMailPort
	}
	return port
}

// FromAddress returns the envelope sender.
func (c *Config) FromAddress() string {
	if c.EmailUser != "" {
		return c.EmailUser
	}
	return DefaultFromAddress
}
