package timeseries

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"leituras-platform/internal/models"
)

func leitura(id int64, local, tipo string, dataHora time.Time, valor float64) *models.Leitura {
	return &models.Leitura{
		ID:       id,
		Local:    local,
		Tipo:     tipo,
		DataHora: dataHora,
		Valor:    valor,
	}
}

func TestShape_EmptyInput(t *testing.T) {
	chart := Shape(nil, "")

	if len(chart.Series) != 0 {
		t.Errorf("Series = %v, want empty", chart.Series)
	}
	if len(chart.Locais) != 0 {
		t.Errorf("Locais = %v, want empty", chart.Locais)
	}
	if len(chart.Tipos) != 0 {
		t.Errorf("Tipos = %v, want empty", chart.Tipos)
	}
}

func TestShape_ChronologicalOrdering(t *testing.T) {
	t1 := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 3, 19, 18, 30, 0, 0, time.UTC)

	// Input arrives as [T3, T1, T2].
	input := []*models.Leitura{
		leitura(3, "São Paulo", models.TipoCO2, t3, 430),
		leitura(1, "São Paulo", models.TipoCO2, t1, 410),
		leitura(2, "São Paulo", models.TipoCO2, t2, 420),
	}

	chart := Shape(input, "")

	if len(chart.Series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(chart.Series))
	}

	var gotIDs []int64
	for _, p := range chart.Series[0].Points {
		gotIDs = append(gotIDs, p.ID)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, gotIDs); diff != "" {
		t.Errorf("series order mismatch (-want +got):\n%s", diff)
	}

	if got := chart.Series[0].Points[2].Label; got != "19/03 18:30" {
		t.Errorf("Label = %q, want %q", got, "19/03 18:30")
	}
}

func TestShape_StableForEqualTimestamps(t *testing.T) {
	ts := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)

	input := []*models.Leitura{
		leitura(10, "São Paulo", models.TipoPM25, ts, 8),
		leitura(11, "São Paulo", models.TipoPM25, ts, 9),
		leitura(12, "São Paulo", models.TipoPM25, ts, 10),
	}

	chart := Shape(input, "")

	var gotIDs []int64
	for _, p := range chart.Series[0].Points {
		gotIDs = append(gotIDs, p.ID)
	}
	if diff := cmp.Diff([]int64{10, 11, 12}, gotIDs); diff != "" {
		t.Errorf("equal timestamps must keep input order (-want +got):\n%s", diff)
	}
}

func TestShape_PartitionsByTipo(t *testing.T) {
	t1 := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC)

	input := []*models.Leitura{
		leitura(1, "São Paulo", models.TipoCO2, t2, 430),
		leitura(2, "São Paulo", models.TipoPM25, t1, 8),
		leitura(3, "São Paulo", models.TipoCO2, t1, 410),
	}

	chart := Shape(input, "")

	if len(chart.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(chart.Series))
	}

	// Series appear in first-seen order within the sorted set.
	if chart.Series[0].Tipo != models.TipoPM25 || chart.Series[1].Tipo != models.TipoCO2 {
		t.Errorf("series tipos = [%s, %s], want [PM2.5, CO2]", chart.Series[0].Tipo, chart.Series[1].Tipo)
	}

	co2 := chart.Series[1]
	if len(co2.Points) != 2 || co2.Points[0].ID != 3 || co2.Points[1].ID != 1 {
		t.Errorf("CO2 series not chronological: %+v", co2.Points)
	}
}

func TestShape_LocalFilter(t *testing.T) {
	ts := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)

	input := []*models.Leitura{
		leitura(1, "São Paulo", models.TipoCO2, ts, 430),
		leitura(2, "Rio de Janeiro", models.TipoCO2, ts.Add(time.Hour), 410),
		leitura(3, "São Paulo", models.TipoPM25, ts.Add(2*time.Hour), 8),
	}

	chart := Shape(input, "Rio de Janeiro")

	if len(chart.Series) != 1 || len(chart.Series[0].Points) != 1 {
		t.Fatalf("expected a single one-point series, got %+v", chart.Series)
	}
	if chart.Series[0].Points[0].ID != 2 {
		t.Errorf("filtered point ID = %d, want 2", chart.Series[0].Points[0].ID)
	}

	// Distinct sets still describe the full input, in first-seen order.
	if diff := cmp.Diff([]string{"São Paulo", "Rio de Janeiro"}, chart.Locais); diff != "" {
		t.Errorf("Locais mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{models.TipoCO2, models.TipoPM25}, chart.Tipos); diff != "" {
		t.Errorf("Tipos mismatch (-want +got):\n%s", diff)
	}
}

func TestShape_UnknownTipoFormsOwnSeries(t *testing.T) {
	ts := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)

	input := []*models.Leitura{
		leitura(1, "São Paulo", "ruído", ts, 62),
	}

	chart := Shape(input, "")

	if len(chart.Series) != 1 || chart.Series[0].Tipo != "ruído" {
		t.Fatalf("unknown tipo should still produce a series, got %+v", chart.Series)
	}
	if len(chart.Series[0].Points) != 1 {
		t.Errorf("one-point series expected, got %d points", len(chart.Series[0].Points))
	}
}

func TestShape_PureAndIdempotent(t *testing.T) {
	t1 := time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC)

	input := []*models.Leitura{
		leitura(1, "São Paulo", models.TipoCO2, t2, 430),
		leitura(2, "Rio de Janeiro", models.TipoPM25, t1, 8),
	}

	first := Shape(input, "")
	second := Shape(input, "")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("shaping the same input twice differed (-first +second):\n%s", diff)
	}

	// Input order must be untouched.
	if input[0].ID != 1 || input[1].ID != 2 {
		t.Errorf("Shape mutated its input: %+v", input)
	}
}
