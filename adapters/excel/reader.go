package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"socialgap/adapters/coercer"
	"socialgap/domain/population"
	apperrors "socialgap/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	coercer  *coercer.TypeCoercer
	logger   *zap.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files.
// The file type is taken from the extension.
func NewDataReader(config ExcelConfig, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	sheet := config.Sheet
	if sheet == "" {
		sheet = DefaultExcelConfig().Sheet
	}
	return &DataReader{
		filePath: config.FilePath,
		fileType: fileType,
		sheet:    sheet,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig, logger),
		logger:   logger.Named("reader"),
	}
}

// Describe names the source for logs
func (r *DataReader) Describe() string {
	return r.fileType + ":" + r.filePath
}

// Load reads the file and coerces it into a population table
func (r *DataReader) Load(ctx context.Context) (*population.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, stats, err := r.coercer.CoerceRecords(data.Headers, data.Rows)
	if err != nil {
		return nil, apperrors.IngestionError("coerce "+r.filePath, err)
	}
	r.logger.Info("population loaded",
		zap.String("source", r.Describe()),
		zap.Int("rows", stats.RowsKept),
		zap.Int("dropped", stats.RowsRead-stats.RowsKept))
	return table, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*RawData, error) {
	r.logger.Debug("reading file", zap.String("type", r.fileType), zap.String("path", r.filePath))

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.IngestionError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath), nil)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, apperrors.IngestionError("unsupported file type: "+r.fileType, nil)
	}
}

// readExcelData reads the configured sheet into structured format
func (r *DataReader) readExcelData() (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.IngestionError("failed to open Excel file", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, apperrors.IngestionError("failed to read sheet "+r.sheet, err)
	}
	r.logger.Debug("sheet read",
		zap.String("sheet", r.sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(startTime)))

	if len(rows) < 1 {
		return nil, apperrors.IngestionError(fmt.Sprintf("Excel sheet %s has no header row", r.sheet), nil)
	}

	return r.processRows(rows), nil
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*RawData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, apperrors.IngestionError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	startTime := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.IngestionError("failed to read CSV file", err)
	}
	r.logger.Debug("csv read", zap.Int("rows", len(rows)), zap.Duration("elapsed", time.Since(startTime)))

	if len(rows) < 1 {
		return nil, apperrors.IngestionError("CSV file has no header row", nil)
	}

	return r.processRows(rows), nil
}

// processRows splits the header from the data rows, padding short rows
// since spreadsheets omit trailing empty cells
func (r *DataReader) processRows(rows [][]string) *RawData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(header), "\ufeff")
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		data = append(data, cells)
	}

	return &RawData{Headers: headers, Rows: data}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
