package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"registration-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	return nil
}

// GenerateExcel writes headers and rows to a new workbook in dir and returns
// the saved file's name.
func GenerateExcel(dir, taskName string, headers []string, rows [][]interface{}) (string, error) {
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", fmt.Errorf("failed to ensure directory exists: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	index, err := f.GetSheetIndex(sheetName)
	if err != nil || index < 0 {
		if index, err = f.NewSheet(sheetName); err != nil {
			return "", fmt.Errorf("error creating sheet: %w", err)
		}
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %w", header, err)
		}
	}

	for r, values := range rows {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("error setting value at %s: %w", cell, err)
			}
		}
	}

	f.SetActiveSheet(index)

	fileName := fmt.Sprintf("%s_%s.xlsx", taskName, time.Now().Format("2006-01-02_15-04-05"))
	fullPath := filepath.Join(dir, fileName)
	if err := f.SaveAs(fullPath); err != nil {
		config.Logger.Error("Error saving Excel file", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}

	config.Logger.Info("Saved Excel file", zap.String("path", fullPath), zap.Int("rows", len(rows)))
	return fileName, nil
}
