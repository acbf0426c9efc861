package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"registration-backend/config"
	"registration-backend/db/models"
	"registration-backend/middleware"
	"registration-backend/registrations/services"
	"registration-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type importRequest struct {
	ColumnMapping services.ColumnMapping `json:"columnMapping"`
	FilePath      string                 `json:"filePath"`
}

// ImportRegistrations runs a confirmed column mapping over a previewed upload.
func (ic *ImportController) ImportRegistrations(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Please upload a file first",
		})
	}

	// Fields left unmapped in the UI arrive as empty strings.
	mapping := services.ColumnMapping{}
	for key, column := range req.ColumnMapping {
		if strings.TrimSpace(column) != "" {
			mapping[key] = column
		}
	}

	if err := services.ValidateMapping(mapping, ic.Catalog); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Column mapping references unknown fields",
			"error":   err.Error(),
		})
	}
	if missing := ic.Catalog.UnmappedRequired(mapping); len(missing) > 0 {
		labels := make([]string, 0, len(missing))
		for _, field := range missing {
			labels = append(labels, field.Label)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Please map required fields: " + strings.Join(labels, ", "),
		})
	}

	ctx := c.UserContext()
	record, err := ic.Uploads.Resolve(ctx, req.FilePath)
	if errors.Is(err, utils.ErrUploadNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Uploaded file not found or expired, please upload it again",
		})
	}
	if err != nil {
		config.Logger.Error("Failed to resolve upload handle", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Upload store is unavailable, please try again",
		})
	}

	reader, err := ic.Storage.DownloadFile(record.StoredName)
	if err != nil {
		config.Logger.Warn("Registered upload missing from storage", zap.String("file", record.StoredName), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Uploaded file not found or expired, please upload it again",
		})
	}
	sheet, err := services.ReadSpreadsheetFrom(reader, record.Extension)
	reader.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": services.UploadErrorMessage(err),
			"error":   err.Error(),
		})
	}

	if absent := absentColumns(mapping, sheet.Columns); len(absent) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Mapped columns not found in file: " + strings.Join(absent, ", "),
		})
	}

	release, err := ic.Lock.Acquire(ctx, importLockKey)
	if errors.Is(err, utils.ErrImportInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Another import is in progress, please try again shortly",
		})
	}
	if err != nil {
		config.Logger.Error("Failed to acquire import lock", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Import could not be started, please try again",
		})
	}
	defer release()

	createdBy := record.UploadedBy
	if user := middleware.CurrentUser(c); user != nil {
		createdBy = user.Email
	}

	runID := uuid.New()
	startedAt := utils.Now()
	reconciler := services.NewImportReconciler(ic.Catalog, ic.Store, ic.Indexer, config.Logger)
	summary, err := reconciler.Run(ctx, sheet.Rows, mapping, services.RunOptions{RunID: runID, CreatedBy: createdBy, Lines: sheet.Lines})
	switch {
	case errors.Is(err, services.ErrUnknownMappingField):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Column mapping references unknown fields",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		config.Logger.Error("Registration import aborted", zap.String("run_id", runID.String()), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Registration store is unavailable, nothing was imported",
		})
	case err != nil:
		config.Logger.Error("Registration import failed", zap.String("run_id", runID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Import failed",
			"error":   err.Error(),
		})
	}

	reportPath := ""
	if summary.Skipped > 0 {
		reportPath = ic.writeReport(summary, runID, createdBy)
	}

	ic.saveRun(ctx, summary, record, mapping, runID, createdBy, reportPath, startedAt)

	if ic.Cache != nil {
		ic.Cache.InvalidateCacheAsync(importRunsResource)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Successfully imported %d users out of %d total rows.", summary.Created, summary.Total),
		"data":    summary,
	})
}

// writeReport saves the skipped-rows workbook, sets summary.ReportLink and
// queues the report email. It returns the saved file path.
func (ic *ImportController) writeReport(summary *services.ImportSummary, runID uuid.UUID, recipient string) string {
	fileName, err := services.WriteSkippedRowsReport(ic.Settings.ReportDir, runID.String(), summary.SkippedRows)
	if err != nil {
		config.Logger.Warn("Failed to write skipped rows report", zap.String("run_id", runID.String()), zap.Error(err))
		return ""
	}
	summary.ReportLink = utils.PublicFileURL(ic.BaseURL, fileName)
	reportPath := filepath.Join(ic.Settings.ReportDir, fileName)

	if ic.Reports == nil || recipient == "" {
		return reportPath
	}
	payload := services.ImportReportPayload{
		RunID:      runID.String(),
		Recipient:  recipient,
		ReportPath: reportPath,
		ReportLink: summary.ReportLink,
		Total:      summary.Total,
		Created:    summary.Created,
		Skipped:    summary.Skipped,
	}
	// Request context may already be gone once the response is written.
	if err := ic.Reports.EnqueueImportReport(context.Background(), payload); err != nil {
		config.Logger.Warn("Failed to queue import report email", zap.String("run_id", runID.String()), zap.Error(err))
	}
	return reportPath
}

func (ic *ImportController) saveRun(ctx context.Context, summary *services.ImportSummary, record utils.UploadRecord, mapping services.ColumnMapping, runID uuid.UUID, createdBy, reportPath string, startedAt time.Time) {
	if ic.Runs == nil {
		return
	}

	storedMapping := datatypes.JSONMap{}
	for key, column := range mapping {
		storedMapping[key] = column
	}

	run := &models.ImportRun{
		ID:            runID,
		FileName:      record.OriginalName,
		FileHash:      record.FileHash,
		ColumnMapping: storedMapping,
		Total:         summary.Total,
		Created:       summary.Created,
		Skipped:       summary.Skipped,
		Duplicates:    summary.SkippedDetails.Duplicates,
		MissingFields: summary.SkippedDetails.MissingFields,
		Other:         summary.SkippedDetails.Other,
		Cancelled:     summary.SkippedDetails.Cancelled,
		ReportPath:    reportPath,
		CreatedBy:     createdBy,
		StartedAt:     startedAt,
		FinishedAt:    utils.Now(),
	}

	skipped := make([]models.ImportSkippedRow, 0, len(summary.SkippedRows))
	for _, entry := range summary.SkippedRows {
		detail, err := json.Marshal(entry)
		if err != nil {
			detail = []byte("{}")
		}
		skipped = append(skipped, models.ImportSkippedRow{
			ID:          uuid.New(),
			ImportRunID: runID,
			Row:         entry.Row,
			Line:        entry.Line,
			Reason:      string(entry.Reason),
			Detail:      datatypes.JSON(detail),
		})
	}

	if err := ic.Runs.SaveImportRun(context.WithoutCancel(ctx), run, skipped); err != nil {
		config.Logger.Error("Failed to save import run audit", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

func absentColumns(mapping services.ColumnMapping, columns []string) []string {
	present := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		present[column] = struct{}{}
	}
	var absent []string
	for _, column := range mapping {
		if _, ok := present[column]; !ok {
			absent = append(absent, column)
		}
	}
	sort.Strings(absent)
	return absent
}
