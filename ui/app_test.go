package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgap/app"
	"socialgap/domain/population"
	"socialgap/internal/testkit"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	table := testkit.TableOf(
		testkit.Person{Household: "H1", Neighborhood: "Centro", Age: 70, Sex: population.SexFemale, Eligible: []string{population.ProgramPensionAdultosMayores}},
		testkit.Person{Household: "H2", Neighborhood: "Centro", Age: 35, Sex: population.SexMale, Health: true},
		testkit.Person{Household: "H3", Neighborhood: "La Joya", Age: 9, Sex: population.SexFemale, Education: true},
	)
	a, err := NewApp(app.NewService(table, nil, app.Options{}, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return a
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndexListsCatalog(t *testing.T) {
	w := get(newTestApp(t), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "3 personas cargadas")
	for _, name := range app.FunctionNames() {
		assert.Contains(t, w.Body.String(), "/reports/"+name)
	}
}

func TestReportRendersTables(t *testing.T) {
	w := get(newTestApp(t), "/reports/eligibility-by-program?program=pension_adultos_mayores")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "Elegibilidad: Pensión Adultos Mayores")
}

func TestReportNestedFilters(t *testing.T) {
	w := get(newTestApp(t), "/reports/categorical-distribution?column=sexo_persona&filters.location=Centro")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Mujer")
	assert.Contains(t, body, "Hombre")
	assert.Contains(t, body, "50%")
}

func TestReportErrors(t *testing.T) {
	a := newTestApp(t)

	w := get(a, "/reports/eligibility-by-program?program=nada")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), app.KindSchema)

	w = get(a, "/reports/unknown")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "eligibility-by-program")
}

func TestHealth(t *testing.T) {
	w := get(newTestApp(t), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestQueryArguments(t *testing.T) {
	values, err := url.ParseQuery("filters.sex=Mujer&filters.age_range=60-90&top_n=3&programs=a&programs=b&bin_ages=false")
	require.NoError(t, err)

	raw, err := json.Marshal(QueryArguments(values))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"filters": {"sex": "Mujer", "age_range": "60-90"},
		"top_n": 3,
		"programs": ["a", "b"],
		"bin_ages": false
	}`, string(raw))
}
