package view

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartboa/sbsbs/internal/models"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04", s)
	require.NoError(t, err)
	return ts
}

func sampleRecords(t *testing.T) []*models.DetectionRecord {
	return []*models.DetectionRecord{
		{ID: "A1", Time: mustTime(t, "2024-01-01T10:00"), RFID: "R1", SkinkRFIDs: models.TagList{"S1", "S2"}},
		{ID: "A2", Time: mustTime(t, "2024-01-02T10:00"), RFID: "R2", SkinkRFIDs: models.TagList{}},
	}
}

func TestBuildColumnOrder(t *testing.T) {
	for _, source := range []DataSource{FromURL(""), FromRecords(nil)} {
		cfg := Build(source)
		assert.Equal(t, []string{
			"ID", "Phone Number", "Time", "Temperature", "Humidity", "Weight", "Snake RFID", "Skink RFIDs",
		}, cfg.Titles())
	}
}

func TestBuildInitialSortIndependentOfData(t *testing.T) {
	want := []SortEntry{{Column: FieldTime, Dir: Descending}}

	assert.Equal(t, want, Build(FromRecords(nil)).InitialSort)
	assert.Equal(t, want, Build(FromRecords(sampleRecords(t))).InitialSort)
	assert.Equal(t, want, Build(FromURL("/elsewhere.json")).InitialSort)
}

func TestBuildTableOptions(t *testing.T) {
	cfg := Build(FromURL(""))

	assert.Equal(t, MountPoint, cfg.MountPoint)
	assert.Equal(t, "#report-table", cfg.MountPoint)
	assert.Equal(t, LayoutFitColumns, cfg.Layout)
	assert.True(t, cfg.MovableColumns)
	assert.Equal(t, ResponsiveHide, cfg.ResponsiveLayout)
	assert.Equal(t, DefaultDataURL, cfg.Source.URL)

	id, ok := cfg.Column(FieldID)
	require.True(t, ok)
	assert.Equal(t, SortAlphanum, id.Sorter)
	assert.Equal(t, CalcCount, id.BottomCalc)
	assert.Equal(t, 1.5, id.WidthGrow)

	for _, field := range []string{FieldTemperature, FieldHumidity, FieldWeight} {
		col, ok := cfg.Column(field)
		require.True(t, ok)
		assert.Equal(t, SortNumber, col.Sorter, field)
		assert.Equal(t, AlignCenter, col.Align, field)
		assert.Equal(t, 115, col.Width, field)
		assert.Nil(t, col.Responsive, field)
	}

	_, ok = cfg.Column("nope")
	assert.False(t, ok)
}

func TestBottomCalcCount(t *testing.T) {
	cfg := Build(FromRecords(nil))

	count, ok := cfg.BottomCalc(FieldID, nil)
	require.True(t, ok)
	assert.Equal(t, 0, count)

	count, ok = cfg.BottomCalc(FieldID, sampleRecords(t))
	require.True(t, ok)
	assert.Equal(t, 2, count)

	_, ok = cfg.BottomCalc(FieldRFID, sampleRecords(t))
	assert.False(t, ok)
}

func TestApplyDefaultSortNewestFirst(t *testing.T) {
	records := sampleRecords(t)
	cfg := Build(FromRecords(records))

	sorted := cfg.Apply(records)
	require.Len(t, sorted, 2)
	assert.Equal(t, "A2", sorted[0].ID)
	assert.Equal(t, "A1", sorted[1].ID)

	// source order is untouched
	assert.Equal(t, "A1", records[0].ID)

	assert.Empty(t, cfg.Apply(nil))
}

func TestApplyStableForEqualTimes(t *testing.T) {
	ts := mustTime(t, "2024-03-01T08:00")
	records := []*models.DetectionRecord{
		{ID: "B1", Time: ts},
		{ID: "B2", Time: ts},
		{ID: "B3", Time: ts.Add(time.Minute)},
	}

	sorted := Build(FromURL("")).Apply(records)
	assert.Equal(t, []string{"B3", "B1", "B2"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestResponsiveHiding(t *testing.T) {
	cfg := Build(FromURL(""))

	for _, field := range []string{FieldTime, FieldRFID} {
		col, ok := cfg.Column(field)
		require.True(t, ok)
		require.NotNil(t, col.Responsive)
		assert.Equal(t, NeverHide, *col.Responsive)
		assert.False(t, col.Hideable(), field)
	}

	var order []string
	for _, c := range cfg.HideOrder() {
		order = append(order, c.Title)
	}
	assert.Equal(t, []string{"ID", "Phone Number", "Skink RFIDs"}, order)
}

func TestBuildIdempotent(t *testing.T) {
	records := sampleRecords(t)
	first := Build(FromRecords(records))
	second := Build(FromRecords(records))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build() not idempotent (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(Build(FromURL("")))
	require.NoError(t, err)
	b, err := json.Marshal(Build(FromURL("")))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestMarshalRendererOptions(t *testing.T) {
	raw, err := json.Marshal(Build(FromURL("")))
	require.NoError(t, err)

	var decoded struct {
		MountPoint string `json:"mountPoint"`
		Table      struct {
			Layout           string           `json:"layout"`
			MovableColumns   bool             `json:"movableColumns"`
			ResponsiveLayout string           `json:"responsiveLayout"`
			AjaxURL          string           `json:"ajaxURL"`
			Columns          []map[string]any `json:"columns"`
			InitialSort      []map[string]any `json:"initialSort"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "#report-table", decoded.MountPoint)
	assert.Equal(t, "fitColumns", decoded.Table.Layout)
	assert.Equal(t, "hide", decoded.Table.ResponsiveLayout)
	assert.Equal(t, "/report/data.json", decoded.Table.AjaxURL)
	require.Len(t, decoded.Table.Columns, 8)
	assert.Equal(t, map[string]any{
		"title": "ID", "field": "id", "sorter": "alphanum", "widthGrow": 1.5,
		"responsive": float64(9), "bottomCalc": "count",
	}, decoded.Table.Columns[0])
	assert.Equal(t, float64(0), decoded.Table.Columns[2]["responsive"])
	// the time column must sort with a built-in comparator needing no date library
	assert.Equal(t, "string", decoded.Table.Columns[2]["sorter"])
	assert.NotContains(t, decoded.Table.Columns[2], "sorterParams")
	assert.NotContains(t, decoded.Table.Columns[3], "responsive")
	assert.Equal(t, []map[string]any{{"column": "time", "dir": "desc"}}, decoded.Table.InitialSort)
}

func TestFeedTimesSortAsText(t *testing.T) {
	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	records := []*models.DetectionRecord{
		{ID: "whole-second", Time: base},
		{ID: "later-millis", Time: base.Add(500 * time.Millisecond)},
		{ID: "earlier", Time: base.Add(-time.Hour)},
		{ID: "other-zone", Time: base.Add(2 * time.Hour).In(time.FixedZone("MUT", 4*3600))},
	}

	var texts []string
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		texts = append(texts, decoded["time"].(string))
	}
	assert.Equal(t, "2024-01-02T10:00:00.000Z", texts[0])
	assert.Equal(t, "2024-01-02T12:00:00.000Z", texts[3])

	sorted := Build(FromURL("")).Apply(records)
	ids := make([]string, len(sorted))
	for i, rec := range sorted {
		ids[i] = rec.ID
	}
	assert.Equal(t, []string{"other-zone", "later-millis", "whole-second", "earlier"}, ids)

	byText := slices.Clone(texts)
	slices.Sort(byText)
	slices.Reverse(byText)
	assert.Equal(t, []string{texts[3], texts[1], texts[0], texts[2]}, byText)
}

func TestMarshalInjectedRecords(t *testing.T) {
	raw, err := json.Marshal(Build(FromRecords(sampleRecords(t))))
	require.NoError(t, err)

	var decoded struct {
		Table struct {
			AjaxURL string           `json:"ajaxURL"`
			Data    []map[string]any `json:"data"`
		} `json:"table"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Empty(t, decoded.Table.AjaxURL)
	require.Len(t, decoded.Table.Data, 2)
	assert.Equal(t, "A1", decoded.Table.Data[0]["id"])
	assert.Equal(t, []any{"S1", "S2"}, decoded.Table.Data[0]["skinkRfids"])
}

func TestCompareAlphanum(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"R2", "R10", -1},
		{"R10", "R2", 1},
		{"r1", "R1", 0},
		{"SM007", "SM7", 0},
		{"A", "AB", -1},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareAlphanum(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
