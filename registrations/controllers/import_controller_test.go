package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"registration-backend/config"
	"registration-backend/db/models"
	"registration-backend/registrations/services"
	"registration-backend/token"
	"registration-backend/utils"
	"registration-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memUploads struct {
	mu      sync.Mutex
	records map[string]utils.UploadRecord
}

func (u *memUploads) Register(ctx context.Context, handle string, record utils.UploadRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records[handle] = record
	return nil
}

func (u *memUploads) Resolve(ctx context.Context, handle string) (utils.UploadRecord, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	record, ok := u.records[handle]
	if !ok {
		return record, utils.ErrUploadNotFound
	}
	return record, nil
}

type memLock struct {
	held bool
}

func (l *memLock) Acquire(ctx context.Context, key string) (func(), error) {
	if l.held {
		return nil, utils.ErrImportInProgress
	}
	l.held = true
	return func() { l.held = false }, nil
}

type memStore struct {
	records []models.Registration
	pingErr error
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

func (s *memStore) ContactExists(ctx context.Context, email, mobile string) (bool, bool, error) {
	var e, m bool
	for _, r := range s.records {
		e = e || (email != "" && strings.EqualFold(r.Email, email))
		m = m || (mobile != "" && r.MobileNumber == mobile)
	}
	return e, m, nil
}

func (s *memStore) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	s.records = append(s.records, *reg)
	return nil
}

type memRuns struct {
	runs    []*models.ImportRun
	skipped [][]models.ImportSkippedRow
}

func (r *memRuns) SaveImportRun(ctx context.Context, run *models.ImportRun, skipped []models.ImportSkippedRow) error {
	r.runs = append(r.runs, run)
	r.skipped = append(r.skipped, skipped)
	return nil
}

func (r *memRuns) GetImportRun(ctx context.Context, id string) (*models.ImportRun, []models.ImportSkippedRow, error) {
	for i, run := range r.runs {
		if run.ID.String() == id {
			return run, r.skipped[i], nil
		}
	}
	return nil, nil, gorm.ErrRecordNotFound
}

func (r *memRuns) ListImportRuns(ctx context.Context, params pagination.PaginationParams) ([]models.ImportRun, int64, error) {
	var out []models.ImportRun
	for _, run := range r.runs {
		if createdBy := params.Filters["created_by"]; createdBy != "" && run.CreatedBy != createdBy {
			continue
		}
		out = append(out, *run)
	}
	total := int64(len(out))
	start := params.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + params.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memRuns) LogEmailSent(ctx context.Context, log *models.EmailLog) error { return nil }

type memQueue struct {
	payloads []services.ImportReportPayload
}

func (q *memQueue) EnqueueImportReport(ctx context.Context, p services.ImportReportPayload) error {
	q.payloads = append(q.payloads, p)
	return nil
}

type memQueryCache struct {
	entries map[string][]byte
	gets    int
}

func (m *memQueryCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	m.gets++
	payload, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dst)
}

func (m *memQueryCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = payload
	return nil
}

type fixture struct {
	app        *fiber.App
	controller *ImportController
	store      *memStore
	runs       *memRuns
	queue      *memQueue
	lock       *memLock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: &memStore{},
		runs:  &memRuns{},
		queue: &memQueue{},
		lock:  &memLock{},
	}
	f.controller = &ImportController{
		Catalog: services.DefaultRegistrationCatalog(),
		Settings: config.ImportSettings{
			MaxFileSize:       1024 * 1024,
			AllowedExtensions: []string{"xls", "xlsx", "xlsm", "csv"},
			PreviewRows:       2,
			ReportDir:         t.TempDir(),
		},
		Storage: utils.NewLocalFileStorage(t.TempDir()),
		Uploads: &memUploads{records: map[string]utils.UploadRecord{}},
		Lock:    f.lock,
		Store:   f.store,
		Runs:    f.runs,
		Reports: f.queue,
		BaseURL: "http://localhost:8080",
	}

	f.app = fiber.New()
	group := f.app.Group("/import", func(c *fiber.Ctx) error {
		c.Locals("user", &token.Payload{Email: "ops@example.com"})
		return c.Next()
	})
	group.Get("/fields", f.controller.GetImportFields)
	group.Post("/preview", f.controller.PreviewImport)
	group.Post("/", f.controller.ImportRegistrations)
	group.Get("/runs", f.controller.ListImportRuns)
	group.Get("/runs/:id", f.controller.GetImportRun)
	return f
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func importRequestFor(t *testing.T, mapping map[string]string, handle string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{"columnMapping": mapping, "filePath": handle})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const exampleCSV = "Full Name,E-Mail,Phone Number\n" +
	"A,a@x.com,1111111111\n" +
	"B,a@x.com,2222222222\n" +
	",c@x.com,3333333333\n"

type previewData struct {
	ExcelColumns     []string            `json:"excelColumns"`
	PreviewData      []map[string]string `json:"previewData"`
	FilePath         string              `json:"filePath"`
	TotalRows        int                 `json:"totalRows"`
	SuggestedMapping map[string]string   `json:"suggestedMapping"`
	AvailableFields  []json.RawMessage   `json:"availableFields"`
}

func (f *fixture) preview(t *testing.T, content string) previewData {
	t.Helper()
	resp, err := f.app.Test(uploadRequest(t, "users.csv", content))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data previewData
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
	return data
}

func TestPreviewImport(t *testing.T) {
	f := newFixture(t)

	data := f.preview(t, exampleCSV)

	assert.Equal(t, []string{"Full Name", "E-Mail", "Phone Number"}, data.ExcelColumns)
	assert.Equal(t, 3, data.TotalRows)
	assert.Len(t, data.PreviewData, 2)
	assert.NotEmpty(t, data.FilePath)
	assert.Len(t, data.AvailableFields, len(f.controller.Catalog.Fields()))
	assert.Equal(t, map[string]string{
		"name":          "Full Name",
		"email":         "E-Mail",
		"mobile_number": "Phone Number",
	}, data.SuggestedMapping)
}

func TestPreviewImportRejectsBadFiles(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		fileName string
		content  string
		message  string
	}{
		{"extension", "users.pdf", "x", services.UploadErrorMessage(services.ErrUnsupportedExtension)},
		{"too large", "users.csv", strings.Repeat("a", 1024*1024+1), services.UploadErrorMessage(services.ErrFileTooLarge)},
		{"unreadable", "users.xlsx", "not a workbook", services.UploadErrorMessage(services.ErrUnreadableSpreadsheet)},
		{"legacy", "users.xls", "binary", services.UploadErrorMessage(services.ErrLegacyXLS)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.app.Test(uploadRequest(t, tt.fileName, tt.content))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			env := decode(t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestImportRegistrations(t *testing.T) {
	f := newFixture(t)
	data := f.preview(t, exampleCSV)

	resp, err := f.app.Test(importRequestFor(t, data.SuggestedMapping, data.FilePath))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decode(t, resp)
	assert.True(t, env.Success)
	var summary services.ImportSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, services.SkippedDetails{Duplicates: 1, MissingFields: 1}, summary.SkippedDetails)
	assert.True(t, strings.HasPrefix(summary.ReportLink, "http://localhost:8080/public/files/"))

	require.Len(t, f.store.records, 1)
	assert.Equal(t, "ops@example.com", f.store.records[0].CreatedBy)

	require.Len(t, f.runs.runs, 1)
	assert.Equal(t, summary.RunID, f.runs.runs[0].ID.String())
	assert.Equal(t, "users.csv", f.runs.runs[0].FileName)
	assert.NotEmpty(t, f.runs.runs[0].FileHash)
	assert.Len(t, f.runs.skipped[0], 2)

	require.Len(t, f.queue.payloads, 1)
	assert.Equal(t, "ops@example.com", f.queue.payloads[0].Recipient)
	assert.False(t, f.lock.held)

	// Audit record is readable afterwards.
	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs/"+summary.RunID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestImportRegistrationsRerunCreatesNothing(t *testing.T) {
	f := newFixture(t)
	data := f.preview(t, exampleCSV)

	for i := 0; i < 2; i++ {
		resp, err := f.app.Test(importRequestFor(t, data.SuggestedMapping, data.FilePath))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Len(t, f.store.records, 1)
	assert.Len(t, f.runs.runs, 2)
	assert.Equal(t, 0, f.runs.runs[1].Created)
	assert.Equal(t, 2, f.runs.runs[1].Duplicates)
}

func TestImportRegistrationsFailures(t *testing.T) {
	mapping := map[string]string{"name": "Full Name", "email": "E-Mail", "mobile_number": "Phone Number"}

	t.Run("unknown handle", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.app.Test(importRequestFor(t, mapping, "does-not-exist"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("unmapped required field", func(t *testing.T) {
		f := newFixture(t)
		data := f.preview(t, exampleCSV)
		resp, err := f.app.Test(importRequestFor(t, map[string]string{"name": "Full Name", "email": "", "mobile_number": "Phone Number"}, data.FilePath))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode(t, resp).Message, "Email")
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newFixture(t)
		data := f.preview(t, exampleCSV)
		withUnknown := map[string]string{"nickname": "Full Name"}
		for k, v := range mapping {
			withUnknown[k] = v
		}
		resp, err := f.app.Test(importRequestFor(t, withUnknown, data.FilePath))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, f.store.records)
	})

	t.Run("mapped column missing from file", func(t *testing.T) {
		f := newFixture(t)
		data := f.preview(t, exampleCSV)
		resp, err := f.app.Test(importRequestFor(t, map[string]string{"name": "Full Name", "email": "Email Address", "mobile_number": "Phone Number"}, data.FilePath))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("import in progress", func(t *testing.T) {
		f := newFixture(t)
		data := f.preview(t, exampleCSV)
		f.lock.held = true
		resp, err := f.app.Test(importRequestFor(t, mapping, data.FilePath))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("store unavailable", func(t *testing.T) {
		f := newFixture(t)
		data := f.preview(t, exampleCSV)
		f.store.pingErr = errors.New("connection refused")
		resp, err := f.app.Test(importRequestFor(t, mapping, data.FilePath))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Empty(t, f.runs.runs)
		assert.False(t, f.lock.held)
	})
}

func TestGetImportFields(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/import/fields", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fields []services.FieldDescriptor
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &fields))
	require.NotEmpty(t, fields)
	assert.Equal(t, "name", fields[0].Key)
	assert.True(t, fields[0].Required)
}

func TestGetImportRunNotFound(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs/8a1f6c2e-4d3b-4a7e-9c1d-2b3e4f5a6b7c", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListImportRuns(t *testing.T) {
	f := newFixture(t)
	data := f.preview(t, exampleCSV)
	resp, err := f.app.Test(importRequestFor(t, data.SuggestedMapping, data.FilePath))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs?created_by=ops@example.com", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page pagination.PaginatedResponse
	page.Items = &[]models.ImportRun{}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &page))
	assert.Equal(t, int64(1), page.Pagination.TotalItems)
	assert.Len(t, *page.Items.(*[]models.ImportRun), 1)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs?page_size=500", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListImportRunsServesCachedPage(t *testing.T) {
	f := newFixture(t)
	cache := &memQueryCache{entries: map[string][]byte{}}
	f.controller.RunsCache = cache
	f.runs.runs = append(f.runs.runs, &models.ImportRun{CreatedBy: "ops@example.com", Total: 4})
	f.runs.skipped = append(f.runs.skipped, nil)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, cache.entries, 1)

	// A run stored behind the cache's back is not visible until invalidation.
	f.runs.runs = append(f.runs.runs, &models.ImportRun{CreatedBy: "ops@example.com", Total: 9})
	f.runs.skipped = append(f.runs.skipped, nil)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/import/runs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page pagination.PaginatedResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &page))
	assert.Equal(t, int64(1), page.Pagination.TotalItems)
	assert.Equal(t, 2, cache.gets)
}
