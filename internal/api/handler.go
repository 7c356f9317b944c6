package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"meeting-notifier/internal/mailer"
	"meeting-notifier/internal/metrics"
	"meeting-notifier/internal/models"
	"meeting-notifier/internal/request"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// Response bodies of POST /process-meeting.
const (
	MsgEmptyHistory  = "Processing complete, chat history was empty."
	MsgNoRecipients  = "Processing complete, no emails sent."
	MsgEmailSent     = "Processing complete, email sent."
	MsgInternalError = "Error interno del servidor de IA. Revisar logs."
	MsgInvalidBody   = "Invalid request body"
)

// Summarizer always yields a document, failures included.
type Summarizer interface {
	Generate(ctx context.Context, history []models.ChatMessage) string
}

// Mailer sends one message to all recipients and reports failures.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, body string) (mailer.Outcome, error)
}

// Recorder observes the terminal state of every request.
type Recorder interface {
	Record(ctx context.Context, rec models.DispatchRecord) error
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler runs the summarize-and-mail pipeline for one meeting per request.
type Handler struct {
	summarizer    Summarizer
	mailer        Mailer
	recorders     []Recorder
	subjectPrefix string
	log           zerolog.Logger
}

func NewHandler(summarizer Summarizer, m Mailer, subjectPrefix string, log zerolog.Logger, recorders ...Recorder) *Handler {
	return &Handler{
		summarizer:    summarizer,
		mailer:        m,
		recorders:     recorders,
		subjectPrefix: subjectPrefix,
		log:           log,
	}
}

// ProcessMeeting handles POST /process-meeting.
func (h *Handler) ProcessMeeting(c echo.Context) error {
	var req models.MeetingSummaryRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("invalid request body")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: MsgInvalidBody})
	}

	// The pipeline runs to completion even if the caller disconnects.
	ctx := context.WithoutCancel(c.Request().Context())
	rec := h.process(ctx, req)
	metrics.ObserveOutcome(rec.Outcome)
	h.record(ctx, rec)

	switch rec.Outcome {
	case models.OutcomeEmptyHistory:
		return c.String(http.StatusOK, MsgEmptyHistory)
	case models.OutcomeNoRecipients:
		return c.String(http.StatusOK, MsgNoRecipients)
	case models.OutcomeSent:
		return c.String(http.StatusOK, MsgEmailSent)
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: MsgInternalError})
	}
}

func (h *Handler) process(ctx context.Context, req models.MeetingSummaryRequest) (rec models.DispatchRecord) {
	rec = models.DispatchRecord{
		RequestID:  uuid.NewString(),
		MeetingID:  req.MeetingID,
		Recipients: []string{},
		CreatedAt:  time.Now().UTC(),
	}
	log := h.log.With().Str("request_id", rec.RequestID).Str("meeting_id", req.MeetingID).Logger()

	span, ctx := tracer.StartSpanFromContext(ctx, "meeting.process", tracer.ResourceName("/process-meeting"))
	span.SetTag("meeting.id", req.MeetingID)
	defer func() {
		span.SetTag("meeting.outcome", string(rec.Outcome))
		span.Finish()
	}()

	if !request.HasTranscript(req.ChatHistory) {
		log.Warn().Msg("chat history is empty, skipping summary")
		rec.Outcome = models.OutcomeEmptyHistory
		return rec
	}

	rec.Recipients = request.FilterRecipients(req.Participants)
	rec.Subject = fmt.Sprintf("%s Resumen de la Reunión %s", h.subjectPrefix, req.MeetingID)

	genSpan, genCtx := tracer.StartSpanFromContext(ctx, "meeting.summarize")
	doc := h.summarizer.Generate(genCtx, req.ChatHistory)
	genSpan.Finish()
	log.Debug().Str("summary_head", truncate(doc, 100)).Msg("summary generated")

	if len(rec.Recipients) == 0 {
		log.Warn().Msg("no valid recipients, skipping email")
		rec.Outcome = models.OutcomeNoRecipients
		return rec
	}

	out, err := h.dispatch(ctx, rec.Recipients, rec.Subject, doc)
	if err != nil {
		log.Error().Err(err).Msg("error processing meeting")
		rec.Outcome = models.OutcomeFailed
		rec.ErrorMessage = err.Error()
		return rec
	}

	rec.Outcome = models.OutcomeSent
	rec.PreviewURL = out.PreviewURL
	log.Info().Strs("recipients", rec.Recipients).Msg("summary email sent")
	return rec
}

// dispatch turns a panicking mailer into an ordinary failure.
func (h *Handler) dispatch(ctx context.Context, recipients []string, subject, doc string) (out mailer.Outcome, err error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "meeting.dispatch")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", mailer.ErrDispatch, r)
		}
		span.Finish(tracer.WithError(err))
	}()
	return h.mailer.Send(ctx, recipients, subject, doc)
}

func (h *Handler) record(ctx context.Context, rec models.DispatchRecord) {
	for _, r := range h.recorders {
		if err := r.Record(ctx, rec); err != nil {
			h.log.Warn().Err(err).Str("request_id", rec.RequestID).Msg("failed to record meeting outcome")
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
