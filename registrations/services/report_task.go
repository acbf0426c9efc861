package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"registration-backend/db/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeImportReportEmail = "registration:import_report_email"

// ImportReportPayload is the job that mails a skipped-rows report to the operator.
type ImportReportPayload struct {
	RunID      string `json:"run_id"`
	Recipient  string `json:"recipient"`
	ReportPath string `json:"report_path"`
	ReportLink string `json:"report_link"`
	Total      int    `json:"total"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
}

func NewImportReportTask(p ImportReportPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImportReportEmail, payload, asynq.MaxRetry(5), asynq.Timeout(2*time.Minute)), nil
}

// ReportQueue schedules report delivery outside the request.
type ReportQueue interface {
	EnqueueImportReport(ctx context.Context, p ImportReportPayload) error
}

type AsynqReportQueue struct {
	client *asynq.Client
}

func NewAsynqReportQueue(client *asynq.Client) *AsynqReportQueue {
	return &AsynqReportQueue{client: client}
}

func (q *AsynqReportQueue) EnqueueImportReport(ctx context.Context, p ImportReportPayload) error {
	task, err := NewImportReportTask(p)
	if err != nil {
		return fmt.Errorf("failed to build report task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue report task: %w", err)
	}
	return nil
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body, attachmentPath string) error
}

type EmailLogRecorder interface {
	LogEmailSent(ctx context.Context, log *models.EmailLog) error
}

// ReportEmailHandler processes TypeImportReportEmail tasks.
type ReportEmailHandler struct {
	mailer EmailSender
	logs   EmailLogRecorder
	logger *zap.Logger
}

func NewReportEmailHandler(mailer EmailSender, logs EmailLogRecorder, logger *zap.Logger) *ReportEmailHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportEmailHandler{mailer: mailer, logs: logs, logger: logger}
}

func (h *ReportEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ImportReportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid report payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Recipient == "" {
		return fmt.Errorf("report payload has no recipient: %w", asynq.SkipRetry)
	}

	subject := "Registration Import Report - " + time.Now().Format("2006-01-02 15:04:05")
	body := fmt.Sprintf(
		"Your registration import has finished.\n\nTotal rows: %d\nCreated: %d\nSkipped: %d\n\nThe attached file lists every skipped row and the reason.\n%s\n",
		p.Total, p.Created, p.Skipped, p.ReportLink,
	)

	if err := h.mailer.SendEmail(ctx, p.Recipient, subject, body, p.ReportPath); err != nil {
		return err
	}

	if h.logs != nil {
		active := true
		entry := &models.EmailLog{
			ID:             uuid.New(),
			Recipient:      p.Recipient,
			Subject:        subject,
			Message:        body,
			SentAt:         time.Now(),
			Active:         &active,
			AttachmentPath: p.ReportLink,
		}
		if err := h.logs.LogEmailSent(ctx, entry); err != nil {
			h.logger.Warn("Failed to log report email", zap.String("run_id", p.RunID), zap.Error(err))
		}
	}
	return nil
}
