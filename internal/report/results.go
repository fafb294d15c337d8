package report

import (
	"fmt"
	"sort"

	"socialgap/internal/crosstab"
	"socialgap/internal/eligibility"
	"socialgap/internal/profiling"
)

// For builds the document of a known result type. The second return is
// false when the value has no markdown layout.
func For(result any) (Document, bool) {
	switch r := result.(type) {
	case *eligibility.EligibilityResult:
		return Eligibility(r), true
	case *eligibility.CoverageGapResult:
		return CoverageGap(r), true
	case *eligibility.DeprivationGapResult:
		return DeprivationGap(r), true
	case *eligibility.IntensityResult:
		return Intensity(r), true
	case *eligibility.ComparisonResult:
		return Comparison(r), true
	case *eligibility.GeographicCoverageResult:
		return GeographicCoverage(r), true
	case *eligibility.SegmentResult:
		return Segment(r), true
	case *crosstab.Result:
		return Crosstab(r), true
	case *profiling.CategoricalDistribution:
		return Categorical(r), true
	case *profiling.NumericDistribution:
		return Numeric(r), true
	case profiling.GeographyOverview:
		return Geography(r), true
	case *profiling.GeographyOverview:
		return Geography(*r), true
	}
	return Document{}, false
}

// Metrics renders name/value pairs in order
func Metrics(title string, pairs ...any) Table {
	t := Table{Title: title, Headers: []string{"Métrica", "Valor"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.AddRow(pairs[i], pairs[i+1])
	}
	return t
}

// SexDistribution renders counts per sex with their share of total
func SexDistribution(counts map[string]int, total int) Table {
	t := Table{Title: "Distribución por sexo", Headers: []string{"Sexo", "Cantidad", "Porcentaje"}}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		share := 0.0
		if total > 0 {
			share = float64(counts[k]) / float64(total) * 100
		}
		t.AddRow(k, counts[k], fmt.Sprintf("%.1f%%", share))
	}
	return t
}

// Ranking renders a geographic ranking
func Ranking(title string, areas []profiling.CategoryShare) Table {
	t := Table{Title: title, Headers: []string{"Rank", "Ubicación", "Personas", "Porcentaje"}}
	for i, a := range areas {
		t.AddRow(i+1, a.Value, a.Count, percent(a.Percent))
	}
	return t
}

func Eligibility(r *eligibility.EligibilityResult) Document {
	doc := Document{Title: "Elegibilidad: " + r.ProgramName}
	p := r.Population
	doc.Tables = append(doc.Tables, Metrics("Población elegible",
		"Población filtrada", p.Filtered,
		"Elegibles", p.Eligible,
		"No elegibles", p.NotEligible,
		"Tasa de elegibilidad", percent(p.EligibilityRate),
		"Porcentaje del total", percent(p.ShareOfDataset),
		"Hogares", p.Households,
	))
	doc.Tables = append(doc.Tables, Metrics("Perfil de elegibles",
		"Edad promedio", r.Profile.Age.Mean,
		"Edad mediana", r.Profile.Age.Median,
		"Edad mínima", r.Profile.Age.Min,
		"Edad máxima", r.Profile.Age.Max,
	))
	doc.Tables = append(doc.Tables, SexDistribution(r.Profile.SexDistribution, p.Eligible))
	doc.Tables = append(doc.Tables, prevalence(r.Deprivations))

	if ctx := r.AreaContext; ctx != nil {
		rank := "-"
		if ctx.Rank != nil {
			rank = fmt.Sprintf("%d de %d", ctx.Rank.Position, ctx.Rank.Of)
		}
		doc.Tables = append(doc.Tables, Metrics("Contexto: "+ctx.Location,
			"Población", ctx.Population,
			"Hogares", ctx.Households,
			"Edad promedio", ctx.MeanAge,
			"Posición por población", rank,
			"Vulnerabilidad", ctx.Vulnerability,
		))
	}
	if cmp := r.Comparison; cmp != nil {
		t := Table{Title: "Comparación entre colonias", Headers: []string{"Rank", "Colonia", "Elegibles", "Total", "Tasa"}}
		for i, a := range cmp.Top {
			t.AddRow(i+1, a.Area, a.Eligible, a.Total, percent(a.Rate))
		}
		doc.Tables = append(doc.Tables, t)
		if cmp.Position != nil {
			doc.Tables = append(doc.Tables, Metrics("", "Posición de la ubicación", fmt.Sprintf("%d de %d", *cmp.Position, cmp.Compared)))
		}
	}
	return doc
}

func prevalence(rows []profiling.DeprivationPrevalence) Table {
	t := Table{Title: "Carencias", Headers: []string{"Carencia", "Personas", "Porcentaje"}}
	for _, d := range rows {
		t.AddRow(d.Label, d.Count, percent(d.Percent))
	}
	return t
}

func CoverageGap(r *eligibility.CoverageGapResult) Document {
	return Document{
		Title: "Brecha de cobertura: " + r.ProgramName,
		Tables: []Table{
			Metrics("Cobertura",
				"Elegibles", r.Eligible,
				"Con apoyo", r.Supported,
				"Sin apoyo", r.Gap,
				"Tasa de brecha", percent(r.GapRate),
			),
			Metrics("Perfil de la brecha",
				"Edad promedio", r.GapProfile.Age.Mean,
				"Hogares", r.GapProfile.Households,
			),
			SexDistribution(r.GapProfile.SexDistribution, r.Gap),
		},
	}
}

func DeprivationGap(r *eligibility.DeprivationGapResult) Document {
	return Document{
		Title: "Carencia sin cobertura: " + r.Label,
		Tables: []Table{
			Metrics("Brecha",
				"Con la carencia", r.WithDeprivation,
				"Sin cobertura", r.WithoutCoverage,
				"Tasa de brecha", percent(r.GapRate),
				"Programas analizados", len(r.ProgramsAnalyzed),
			),
			SexDistribution(r.GapProfile.SexDistribution, r.WithoutCoverage),
		},
	}
}

func Intensity(r *eligibility.IntensityResult) Document {
	t := Table{Title: "Intensidad de carencias", Headers: []string{"Carencias", "Nivel", "Personas", "Porcentaje"}}
	for _, l := range r.Levels {
		t.AddRow(l.Deprivations, l.Label, l.Count, percent(l.Percent))
	}
	return Document{
		Title: "Intensidad de carencias",
		Tables: []Table{
			t,
			Metrics("Vulnerabilidad extrema",
				"Personas", r.Extreme.Count,
				"Porcentaje", percent(r.Extreme.Percent),
			),
		},
	}
}

func Comparison(r *eligibility.ComparisonResult) Document {
	t := Table{Title: "Ranking de programas", Headers: []string{"Rank", "Programa", "Elegibles", "Tasa"}}
	for _, p := range r.Ranking {
		t.AddRow(p.Rank, p.ProgramName, p.Eligible, percent(p.EligibilityRate))
	}
	return Document{Title: "Comparación de programas", Tables: []Table{t}}
}

func GeographicCoverage(r *eligibility.GeographicCoverageResult) Document {
	return Document{
		Title: "Cobertura geográfica: " + r.ProgramName,
		Tables: []Table{
			Ranking("Elegibles por "+r.Level, r.TopAreas),
			Metrics("", "Total elegibles", r.TotalEligible, "Áreas con elegibles", r.AreasAffected),
		},
	}
}

func Segment(r *eligibility.SegmentResult) Document {
	return Document{
		Title: "Segmento de población",
		Tables: []Table{
			Metrics("Perfil",
				"Personas", r.Profile.Total,
				"Porcentaje del total", percent(r.ShareOfTotal),
				"Edad promedio", r.Profile.MeanAge,
				"Hogares", r.Profile.Households,
				"Personas por hogar", r.Profile.PersonsPerHousehold,
			),
			SexDistribution(r.Profile.SexDistribution, r.Profile.Total),
			Ranking("Distribución por "+r.Distribution.Column, r.Distribution.TopAreas),
		},
	}
}

func Crosstab(r *crosstab.Result) Document {
	t := Table{Title: r.RowField + " x " + r.ColumnField, Headers: append([]string{r.RowField}, r.Table.Columns...)}
	for i, label := range r.Table.Rows {
		row := make([]any, 0, len(r.Table.Columns)+1)
		row = append(row, label)
		for _, n := range r.Table.Counts[i] {
			row = append(row, n)
		}
		t.AddRow(row...)
	}
	doc := Document{Title: "Tabulación cruzada", Tables: []Table{t}}
	if ind := r.Independence; ind != nil {
		doc.Tables = append(doc.Tables, Metrics("Independencia",
			"Chi cuadrada", ind.ChiSquare,
			"Grados de libertad", ind.DegreesOfFreedom,
			"Valor p", ind.PValue,
			"V de Cramér", ind.CramersV,
			"Señal", ind.Signal,
		))
	}
	return doc
}

func Categorical(r *profiling.CategoricalDistribution) Document {
	t := Table{Title: "Distribución de " + r.Column, Headers: []string{"Valor", "Cantidad", "Porcentaje"}}
	for _, c := range r.Categories {
		t.AddRow(c.Value, c.Count, percent(c.Percent))
	}
	return Document{Title: "Distribución categórica", Tables: []Table{t}}
}

func Numeric(r *profiling.NumericDistribution) Document {
	s := r.Summary
	return Document{
		Title: "Distribución numérica",
		Tables: []Table{Metrics("Resumen de "+r.Column,
			"Observaciones", r.Total,
			"Media", s.Mean,
			"Mediana", s.Median,
			"Desviación estándar", s.StdDev,
			"Mínimo", s.Min,
			"Q1", s.Q1,
			"Q3", s.Q3,
			"Máximo", s.Max,
			"Asimetría", s.Skewness,
			"Valores atípicos", s.Outliers,
		)},
	}
}

func Geography(g profiling.GeographyOverview) Document {
	doc := Document{Title: "Geografía disponible"}
	for _, level := range []profiling.AreaLevel{g.Neighborhoods, g.CensusBlocks, g.Zones} {
		t := Table{Title: fmt.Sprintf("%s (%d)", level.Column, level.Distinct), Headers: []string{"Área", "Personas"}}
		for _, c := range level.Top {
			t.AddRow(c.Value, c.Count)
		}
		doc.Tables = append(doc.Tables, t)
	}
	return doc
}
