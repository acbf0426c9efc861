package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnreadableSpreadsheet = errors.New("spreadsheet could not be read")
	ErrLegacyXLS             = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx and upload again")
	ErrEmptySpreadsheet      = errors.New("spreadsheet has no header row")
)

// Sheet is the rectangular table parsed from the first worksheet of an upload.
// Lines[i] is the 1-based spreadsheet line Rows[i] was read from.
type Sheet struct {
	Columns []string
	Rows    []RawRow
	Lines   []int
}

// ReadSpreadsheet parses the file at path according to its extension.
func ReadSpreadsheet(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSpreadsheet, err)
	}
	defer f.Close()
	return ReadSpreadsheetFrom(f, FileExtension(path))
}

// ReadSpreadsheetFrom parses r as a workbook (xlsx, xlsm) or CSV.
func ReadSpreadsheetFrom(r io.Reader, ext string) (*Sheet, error) {
	var records [][]string
	var lines []int
	var err error

	switch ext {
	case "csv":
		records, lines, err = readCSV(r)
	case "xlsx", "xlsm":
		records, err = readWorkbook(r)
		lines = sequentialLines(len(records))
	case "xls":
		return nil, ErrLegacyXLS
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrUnreadableSpreadsheet, ext)
	}
	if err != nil {
		return nil, err
	}
	return buildSheet(records, lines)
}

// FileExtension returns the lower-cased extension of name without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSpreadsheet, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptySpreadsheet
	}
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSpreadsheet, err)
	}
	return rows, nil
}

// readCSV also returns the file line each record starts on. encoding/csv
// skips empty lines and quoted fields may span lines, so record index and
// file line differ.
func readCSV(r io.Reader) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableSpreadsheet, err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, lines, nil
}

// GetRows keeps empty rows inside the used range, so record i is line i+1.
func sequentialLines(n int) []int {
	lines := make([]int, n)
	for i := range lines {
		lines[i] = i + 1
	}
	return lines
}

// buildSheet treats the first record as the header. Blank headers are named
// after their position, repeated headers get a numeric suffix, fully blank
// rows are dropped and short rows are padded with blanks. lines[i] is the
// spreadsheet line of records[i].
func buildSheet(records [][]string, lines []int) (*Sheet, error) {
	if len(records) == 0 || isBlankRecord(records[0]) {
		return nil, ErrEmptySpreadsheet
	}

	header := records[0]
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		columns[i] = name
	}

	sheet := &Sheet{
		Columns: columns,
		Rows:    make([]RawRow, 0, len(records)-1),
		Lines:   make([]int, 0, len(records)-1),
	}
	for i, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(RawRow, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.Lines = append(sheet.Lines, lines[i+1])
	}
	return sheet, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
