package report

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/view"
)

var generated = time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)

func records() []*models.DetectionRecord {
	return []*models.DetectionRecord{
		{
			ID: "SM-older", PhoneNumber: "+23051", Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Temperature: 27.5, Humidity: 64, Weight: 380, RFID: "R1", SkinkRFIDs: models.TagList{"S1", "S2"},
		},
		{
			ID: "SM-newer", PhoneNumber: "+23051", Time: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			Temperature: 30, Humidity: 58.5, Weight: 381.5, RFID: "R2", SkinkRFIDs: models.TagList{},
		},
	}
}

func TestRenderPage(t *testing.T) {
	r, err := NewRenderer("Smart Boa Snake Basking Station")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view.FromURL("/report/data.json"), records(), generated))
	page := buf.String()

	assert.Contains(t, page, `<div id="report-table"></div>`)
	assert.Contains(t, page, "<h1>Smart Boa Snake Basking Station</h1>")
	assert.Contains(t, page, "tabulator.min.js")
	assert.Contains(t, page, "2 detections")
	assert.Contains(t, page, "initialSort")
	assert.Contains(t, page, "/report/data.json")

	// fallback rows are newest first
	newer := strings.Index(page, "SM-newer")
	older := strings.Index(page, "SM-older")
	require.True(t, newer > 0 && older > 0)
	assert.Less(t, newer, older)
	assert.Contains(t, page, "<td>S1, S2</td>")
}

func TestRenderEmptyPage(t *testing.T) {
	r, err := NewRenderer("Station")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view.FromURL(""), nil, generated))
	assert.Contains(t, buf.String(), "0 detections")
	assert.Contains(t, buf.String(), "<tfoot>")
}

func TestRenderEscapesRecordValues(t *testing.T) {
	r, err := NewRenderer("Station")
	require.NoError(t, err)

	recs := records()
	recs[0].RFID = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view.FromURL(""), recs, generated))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestCells(t *testing.T) {
	cfg := view.Build(view.FromURL(""))
	cells := Cells(cfg, records()[0])

	assert.Equal(t, []string{
		"SM-older", "+23051", "2024-01-01 10:00:00", "27.5", "64.0", "380.0", "R1", "S1, S2",
	}, cells)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records(), true))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.StorageHeader, rows[0])
	assert.Equal(t, "SM-older", rows[1][0])
	assert.Equal(t, "1704103200000", rows[1][2])
	assert.Equal(t, "S1;S2", rows[1][7])
	assert.Equal(t, "", rows[2][7])
}

func TestWriteCSVWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, false))
	assert.Empty(t, buf.String())
}

func TestAssets(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/assets/", Assets()))
	defer srv.Close()

	for _, name := range []string{"main.js", "styles.css"} {
		resp, err := http.Get(srv.URL + "/assets/" + name)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
	}
}
