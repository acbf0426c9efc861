package controllers

import (
	"registration-backend/config"
	"registration-backend/middleware"
	"registration-backend/registrations/services"
	"registration-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PreviewImport stores an uploaded spreadsheet, parses its first sheet and
// returns the columns, a sample of rows and a suggested mapping. filePath in
// the response is an opaque handle for the import call.
func (ic *ImportController) PreviewImport(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Please select a file to upload",
		})
	}

	ext, err := services.ValidateUpload(file.Filename, file.Size, ic.Settings)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": services.UploadErrorMessage(err),
			"error":   err.Error(),
		})
	}

	src, err := file.Open()
	if err != nil {
		config.Logger.Error("Failed to open uploaded file", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	storedName := uuid.NewString() + "." + ext
	storedPath, err := ic.Storage.UploadFileFromReader(src, storedName)
	if err != nil {
		config.Logger.Error("Failed to store uploaded file", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save uploaded file",
		})
	}

	sheet, err := services.ReadSpreadsheet(storedPath)
	if err != nil {
		ic.discard(storedName)
		config.Logger.Info("Uploaded spreadsheet rejected", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": services.UploadErrorMessage(err),
			"error":   err.Error(),
		})
	}

	fileHash, err := utils.GenerateFileHash(storedPath)
	if err != nil {
		config.Logger.Warn("Failed to hash uploaded file", zap.String("file", storedName), zap.Error(err))
	}

	uploadedBy := ""
	if user := middleware.CurrentUser(c); user != nil {
		uploadedBy = user.Email
	}

	handle := uuid.NewString()
	record := utils.UploadRecord{
		OriginalName: file.Filename,
		StoredName:   storedName,
		Extension:    ext,
		FileHash:     fileHash,
		UploadedBy:   uploadedBy,
		TotalRows:    len(sheet.Rows),
		UploadedAt:   utils.Now(),
	}
	if err := ic.Uploads.Register(c.UserContext(), handle, record); err != nil {
		ic.discard(storedName)
		config.Logger.Error("Failed to register upload", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Upload could not be registered, please try again",
		})
	}

	previewCount := ic.Settings.PreviewRows
	if previewCount > len(sheet.Rows) {
		previewCount = len(sheet.Rows)
	}

	config.Logger.Info("Registration spreadsheet previewed",
		zap.String("file", file.Filename),
		zap.String("handle", handle),
		zap.Int("columns", len(sheet.Columns)),
		zap.Int("rows", len(sheet.Rows)),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File uploaded and parsed successfully",
		"data": fiber.Map{
			"excelColumns":     sheet.Columns,
			"availableFields":  ic.Catalog.Fields(),
			"previewData":      sheet.Rows[:previewCount],
			"filePath":         handle,
			"totalRows":        len(sheet.Rows),
			"suggestedMapping": services.ProposeMapping(sheet.Columns, ic.Catalog),
		},
	})
}

func (ic *ImportController) discard(storedName string) {
	if err := ic.Storage.DeleteFile(storedName); err != nil {
		config.Logger.Warn("Failed to delete rejected upload", zap.String("file", storedName), zap.Error(err))
	}
}
