// Package timeseries turns an unordered collection of readings into
// plot-ready per-metric series. Shaping is a pure computation: it never
// mutates its input and holds no state between calls.
package timeseries

import (
	"sort"
	"time"

	"leituras-platform/internal/models"
)

// labelLayout is the short axis label (day/month hour:minute).
const labelLayout = "02/01 15:04"

// Point is one chart point: the reading plus its derived axis label.
// The label is presentation-only and never persisted.
type Point struct {
	models.Leitura
	Label string `json:"data_hora_formatada"`
}

// Series is a chronologically ordered sequence of points of one metric kind.
type Series struct {
	Tipo   string  `json:"tipo"`
	Points []Point `json:"pontos"`
}

// Chart is the shaped output: one series per metric kind present, plus the
// distinct locations (for a selector) and metric kinds (for legends) seen in
// the full input, de-duplicated in first-seen order.
type Chart struct {
	Series []Series `json:"series"`
	Locais []string `json:"locais"`
	Tipos  []string `json:"tipos"`
}

// Shape builds a Chart from readings. When local is non-empty only readings
// whose local matches exactly contribute points; Locais and Tipos always
// describe the full input. Empty input yields empty series and empty sets.
func Shape(leituras []*models.Leitura, local string) Chart {
	chart := Chart{
		Series: []Series{},
		Locais: distinctLocais(leituras),
		Tipos:  distinctTipos(leituras),
	}

	filtered := make([]*models.Leitura, 0, len(leituras))
	for _, l := range leituras {
		if local == "" || l.Local == local {
			filtered = append(filtered, l)
		}
	}

	// Stable sort keeps the original relative order of equal timestamps.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].DataHora.Before(filtered[j].DataHora)
	})

	seriesIndex := make(map[string]int)
	for _, l := range filtered {
		idx, ok := seriesIndex[l.Tipo]
		if !ok {
			idx = len(chart.Series)
			seriesIndex[l.Tipo] = idx
			chart.Series = append(chart.Series, Series{
				Tipo:   l.Tipo,
				Points: []Point{},
			})
		}

		chart.Series[idx].Points = append(chart.Series[idx].Points, Point{
			Leitura: *l,
			Label:   formatLabel(l.DataHora),
		})
	}

	return chart
}

func formatLabel(t time.Time) string {
	return t.Format(labelLayout)
}

func distinctLocais(leituras []*models.Leitura) []string {
	seen := make(map[string]struct{})
	locais := []string{}
	for _, l := range leituras {
		if _, ok := seen[l.Local]; ok {
			continue
		}
		seen[l.Local] = struct{}{}
		locais = append(locais, l.Local)
	}
	return locais
}

func distinctTipos(leituras []*models.Leitura) []string {
	seen := make(map[string]struct{})
	tipos := []string{}
	for _, l := range leituras {
		if _, ok := seen[l.Tipo]; ok {
			continue
		}
		seen[l.Tipo] = struct{}{}
		tipos = append(tipos, l.Tipo)
	}
	return tipos
}
