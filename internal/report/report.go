package report

import (
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets
var assetsFS embed.FS

const (
	pageTemplate    = "report.html"
	cellTimeFormat  = "2006-01-02 15:04:05"
	generatedFormat = "2006-01-02 15:04 MST"
	skinkCellJoiner = ", "
)

// Renderer produces the report page around a view configuration
type Renderer struct {
	title string
	tmpl  *template.Template
}

type pageData struct {
	Title       string
	MountID     string
	Config      view.ViewConfiguration
	Columns     []view.ColumnSpec
	Rows        [][]string
	Count       int
	FooterPad   []struct{}
	GeneratedAt string
}

// NewRenderer parses the embedded page template
func NewRenderer(title string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &Renderer{title: title, tmpl: tmpl}, nil
}

// Render writes the report page. The renderer in the browser loads rows
// from source; records fill the static fallback table.
func (r *Renderer) Render(w io.Writer, source view.DataSource, records []*models.DetectionRecord, now time.Time) error {
	cfg := view.Build(source)
	sorted := cfg.Apply(records)
	count, _ := cfg.BottomCalc(view.FieldID, sorted)

	data := pageData{
		Title:       r.title,
		MountID:     strings.TrimPrefix(cfg.MountPoint, "#"),
		Config:      cfg,
		Columns:     cfg.Columns,
		Rows:        make([][]string, len(sorted)),
		Count:       count,
		FooterPad:   make([]struct{}, len(cfg.Columns)-1),
		GeneratedAt: now.Format(generatedFormat),
	}
	for i, rec := range sorted {
		data.Rows[i] = Cells(cfg, rec)
	}

	return r.tmpl.ExecuteTemplate(w, pageTemplate, data)
}

// Cells formats a record for display, one cell per configured column
func Cells(cfg view.ViewConfiguration, rec *models.DetectionRecord) []string {
	cells := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		switch col.Field {
		case view.FieldID:
			cells[i] = rec.ID
		case view.FieldPhoneNumber:
			cells[i] = rec.PhoneNumber
		case view.FieldTime:
			cells[i] = rec.Time.Format(cellTimeFormat)
		case view.FieldTemperature:
			cells[i] = strconv.FormatFloat(rec.Temperature, 'f', 1, 64)
		case view.FieldHumidity:
			cells[i] = strconv.FormatFloat(rec.Humidity, 'f', 1, 64)
		case view.FieldWeight:
			cells[i] = strconv.FormatFloat(rec.Weight, 'f', 1, 64)
		case view.FieldRFID:
			cells[i] = rec.RFID
		case view.FieldSkinkRFIDs:
			cells[i] = strings.Join(rec.SkinkRFIDs, skinkCellJoiner)
		}
	}
	return cells
}

// WriteCSV writes records in the storage line layout, optionally with a header row
func WriteCSV(w io.Writer, records []*models.DetectionRecord, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(models.StorageHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, rec := range records {
		if err := cw.Write(rec.ToRow()); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Assets serves the embedded stylesheet and renderer bootstrap script
func Assets() http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
