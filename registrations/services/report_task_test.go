package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"registration-backend/db/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	to, subject, body, attachment string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendEmail(ctx context.Context, to, subject, body, attachmentPath string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, subject, body, attachmentPath})
	return nil
}

type fakeEmailLogs struct {
	logs []*models.EmailLog
}

func (l *fakeEmailLogs) LogEmailSent(ctx context.Context, log *models.EmailLog) error {
	l.logs = append(l.logs, log)
	return nil
}

func TestNewImportReportTask(t *testing.T) {
	payload := ImportReportPayload{RunID: "r1", Recipient: "ops@example.com", Total: 3, Created: 1, Skipped: 2}

	task, err := NewImportReportTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeImportReportEmail, task.Type())

	var decoded ImportReportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestReportEmailHandlerSendsAndLogs(t *testing.T) {
	mailer := &fakeMailer{}
	logs := &fakeEmailLogs{}
	handler := NewReportEmailHandler(mailer, logs, nil)

	task, err := NewImportReportTask(ImportReportPayload{
		RunID: "r1", Recipient: "ops@example.com", ReportPath: "/tmp/report.xlsx",
		ReportLink: "http://localhost/public/files/report.xlsx", Total: 3, Created: 1, Skipped: 2,
	})
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ops@example.com", mailer.sent[0].to)
	assert.Equal(t, "/tmp/report.xlsx", mailer.sent[0].attachment)
	assert.Contains(t, mailer.sent[0].body, "Skipped: 2")
	require.Len(t, logs.logs, 1)
	assert.Equal(t, "ops@example.com", logs.logs[0].Recipient)
}

func TestReportEmailHandlerSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewReportEmailHandler(&fakeMailer{}, nil, nil)

	err := handler.ProcessTask(context.Background(), asynq.NewTask(TypeImportReportEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewImportReportTask(ImportReportPayload{RunID: "r1"})
	require.NoError(t, err)
	assert.ErrorIs(t, handler.ProcessTask(context.Background(), task), asynq.SkipRetry)
}

func TestReportEmailHandlerRetriesOnSendFailure(t *testing.T) {
	sendErr := errors.New("smtp: 421 try later")
	handler := NewReportEmailHandler(&fakeMailer{err: sendErr}, nil, nil)

	task, err := NewImportReportTask(ImportReportPayload{RunID: "r1", Recipient: "ops@example.com"})
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, sendErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
