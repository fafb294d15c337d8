package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgap/app"
	"socialgap/internal/crosstab"
	"socialgap/internal/report"
)

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf)
	for _, name := range app.FunctionNames() {
		assert.Contains(t, buf.String(), name+"\n")
	}
	assert.Contains(t, buf.String(), "--program string (required)")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, map[string]int{"total": 3}, "json"))
	assert.JSONEq(t, `{"total": 3}`, buf.String())

	buf.Reset()
	result := &crosstab.Result{RowField: "sexo_persona", ColumnField: "ageb", Table: &crosstab.Table{}}
	require.NoError(t, printResult(&buf, result, report.FormatMarkdown))
	assert.Contains(t, buf.String(), "# ")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	assert.ErrorIs(t, printError(&buf, boom), boom)

	var res app.ErrorResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, app.KindInternal, res.Kind)
}

func TestRunDemo(t *testing.T) {
	t.Setenv("DATA_SOURCE", "file")
	t.Setenv("CONFIG_FILE", "")
	c, err := loadContainer(context.Background(), true)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	args, err := app.ParseArguments([]byte(`{"program":"pension_adultos_mayores"}`))
	require.NoError(t, err)
	_, err = c.Service.Call(context.Background(), app.FnEligibilityByProgram, args)
	assert.NoError(t, err)
}
