// Package importer loads exercises from spreadsheet files into the
// catalogue. The first sheet of an .xlsx file (or a .csv file) is read with
// columns order, title, description, demoVideoUrl, professionalAnswerUrl
// and an optional pdfUrl.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"advocatr/backend/models"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/xuri/excelize/v2"
)

const (
	colOrder = iota
	colTitle
	colDescription
	colDemoVideo
	colProfessionalAnswer
	colPDF
)

// ExerciseStore is where imported rows are written.
type ExerciseStore interface {
	UpsertByOrder(ctx context.Context, in services.ExerciseInput) (*models.Exercise, bool, error)
}

type ImportConfig struct {
	FilePath string
	// SheetName defaults to the first sheet of the workbook.
	SheetName string
	// StartRow is 1-based; rows before it are skipped. Zero means 2, which
	// skips a header row.
	StartRow int
}

type ImportResult struct {
	TotalProcessed int      `json:"totalProcessed"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

type Importer struct {
	Store ExerciseStore
}

func New(store ExerciseStore) *Importer {
	return &Importer{Store: store}
}

// Import reads cfg.FilePath and upserts every row by order. Row problems are
// collected in the result; only file level failures return an error.
func (im *Importer) Import(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		rows, err = readCSV(cfg.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(cfg.FilePath))
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		line := i + 1
		if line < cfg.StartRow {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		input, err := parseRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		_, created, err := im.Store.UpsertByOrder(ctx, input)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", line, describe(err)))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func parseRow(row []string) (services.ExerciseInput, error) {
	order, err := strconv.Atoi(cell(row, colOrder))
	if err != nil {
		return services.ExerciseInput{}, fmt.Errorf("invalid order %q", cell(row, colOrder))
	}

	input := services.ExerciseInput{
		Order:                 order,
		Title:                 cell(row, colTitle),
		Description:           cell(row, colDescription),
		DemoVideoURL:          cell(row, colDemoVideo),
		ProfessionalAnswerURL: cell(row, colProfessionalAnswer),
	}
	if pdf := cell(row, colPDF); pdf != "" {
		input.PDFURL = &pdf
	}
	return input, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// describe flattens validation details into one line.
func describe(err error) string {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	details, ok := appErr.Details.(map[string]string)
	if !ok || len(details) == 0 {
		return appErr.Message
	}
	parts := make([]string, 0, len(details))
	for _, field := range []string{"order", "title", "description", "demoVideoUrl", "professionalAnswerUrl", "pdfUrl"} {
		if msg, ok := details[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
