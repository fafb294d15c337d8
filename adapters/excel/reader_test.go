package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"socialgap/domain/core"
	"socialgap/domain/population"
	apperrors "socialgap/internal/errors"
)

var header = []string{
	population.ColumnPersonID,
	population.ColumnAge,
	population.ColumnSex,
	population.ColumnNeighborhood,
	population.EligibilityColumn(population.ProgramPensionAdultosMayores),
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poblacion.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "poblacion.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDataReader_CSV(t *testing.T) {
	path := writeCSV(t, "\ufeffid_persona,edad_persona,sexo_persona,colonia,es_elegible_pension_adultos_mayores\n"+
		"P1,70,Mujer,Centro,yes\n"+
		"P2,abc,Hombre,Centro,no\n"+
		",,,,\n"+
		"P3,30,h,La Joya\n")

	reader := NewDataReader(ExcelConfig{FilePath: path}, zap.NewNop())
	data, err := reader.ReadData()
	require.NoError(t, err)
	assert.Equal(t, header, data.Headers)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"P3", "30", "h", "La Joya", ""}, data.Rows[2])

	table, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Rows()[0].IsEligible(population.ProgramPensionAdultosMayores))
	assert.Equal(t, population.SexMale, table.Rows()[1].Sex)
	assert.Equal(t, "csv:"+path, reader.Describe())
}

func TestDataReader_XLSX(t *testing.T) {
	rows := [][]any{{header[0], header[1], header[2], header[3], header[4]}}
	for i := 1; i <= 5; i++ {
		rows = append(rows, []any{fmt.Sprintf("P%d", i), 60 + i, "Mujer", "Centro", "sí"})
	}
	path := writeXLSX(t, "Poblacion", rows)

	reader := NewDataReader(ExcelConfig{FilePath: path, Sheet: "Poblacion"}, zap.NewNop())
	table, err := reader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, table.Len())
	assert.Equal(t, 65, table.Rows()[4].Age)
	assert.Equal(t, []string{population.ProgramPensionAdultosMayores}, table.Programs())
}

func TestDataReader_Errors(t *testing.T) {
	_, err := NewDataReader(ExcelConfig{FilePath: filepath.Join(t.TempDir(), "missing.csv")}, nil).ReadData()
	assert.ErrorContains(t, err, "CSV file not found")
	assert.Equal(t, apperrors.CodeIngestionError, apperrors.Classify(err))

	path := writeXLSX(t, "Sheet1", [][]any{{"edad_persona"}, {40}})
	_, err = NewDataReader(ExcelConfig{FilePath: path, Sheet: "Otra"}, nil).ReadData()
	assert.Equal(t, apperrors.CodeIngestionError, apperrors.Classify(err))

	empty := writeCSV(t, "")
	_, err = NewDataReader(ExcelConfig{FilePath: empty}, nil).ReadData()
	assert.ErrorContains(t, err, "no header row")
	assert.Equal(t, apperrors.CodeIngestionError, apperrors.Classify(err))
}

func TestDataReader_MissingAgeColumnKeepsDomainError(t *testing.T) {
	path := writeCSV(t, "id_persona\nP1\n")

	_, err := NewDataReader(ExcelConfig{FilePath: path}, nil).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Equal(t, apperrors.CodeMissingDependency, apperrors.Classify(err))
	assert.Equal(t, apperrors.CodeIngestionError, apperrors.GetCode(err))
}

func TestDataReader_CancelledContext(t *testing.T) {
	path := writeCSV(t, "edad_persona\n40\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDataReader(ExcelConfig{FilePath: path}, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
