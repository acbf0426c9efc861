package services

import (
	"strings"

	"registration-backend/utils"
)

var skippedRowsReportHeaders = []string{
	"Row", "Line", "Reason", "Email", "Mobile Number", "Matched On", "Duplicate Source", "Missing Fields", "Error",
}

// WriteSkippedRowsReport saves every skip entry of a run as an Excel sheet in
// dir and returns the file name.
func WriteSkippedRowsReport(dir, runID string, entries []SkipEntry) (string, error) {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.Row,
			e.Line,
			string(e.Reason),
			e.Email,
			e.MobileNumber,
			strings.Join(e.MatchedOn, ", "),
			e.Source,
			strings.Join(e.MissingFields, ", "),
			e.Error,
		})
	}
	return utils.GenerateExcel(dir, utils.CleanStringForFilename("registration_import_skipped_"+runID), skippedRowsReportHeaders, rows)
}
