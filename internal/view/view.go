// Package view builds the declarative table configuration handed to the
// browser-side grid renderer. Construction is pure: the same input always
// yields the same configuration and nothing here can fail.
package view

import (
	"github.com/smartboa/sbsbs/internal/models"
)

// MountPoint is the element selector the renderer attaches to
const MountPoint = "#report-table"

// DefaultDataURL is where the renderer fetches rows when no records are injected
const DefaultDataURL = "/report/data.json"

// SortKind names one of the renderer's built-in comparators
type SortKind string

const (
	SortAlphanum SortKind = "alphanum"
	SortNumber   SortKind = "number"
	SortString   SortKind = "string"
)

// Direction of a sort entry
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Alignment hint for cell content
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignCenter  Alignment = "center"
)

// Calc names a column aggregate shown below the table
type Calc string

const (
	CalcNone  Calc = ""
	CalcCount Calc = "count"
)

// Fields a column can be bound to
const (
	FieldID          = "id"
	FieldPhoneNumber = "phoneNumber"
	FieldTime        = "time"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldWeight      = "weight"
	FieldRFID        = "rfid"
	FieldSkinkRFIDs  = "skinkRfids"
)

// NeverHide is the responsive rank of columns that always stay visible
const NeverHide = 0

// ColumnSpec declares one table column.
// Width and WidthGrow are exclusive; a zero Width means the column grows.
// A nil Responsive leaves the column out of responsive hiding.
type ColumnSpec struct {
	Title      string
	Field      string
	Sorter     SortKind
	Width      int
	WidthGrow  float64
	Align      Alignment
	Responsive *int
	BottomCalc Calc
}

// Hideable reports whether the renderer may drop the column for lack of space
func (c ColumnSpec) Hideable() bool {
	return c.Responsive != nil && *c.Responsive != NeverHide
}

// SortEntry is one key of the initial sort
type SortEntry struct {
	Column string
	Dir    Direction
}

// Layout options understood by the renderer
const (
	LayoutFitColumns = "fitColumns"
	ResponsiveHide   = "hide"
)

// DataSource tells the renderer where rows come from: either a URL it
// fetches itself or records injected into the page.
type DataSource struct {
	URL     string
	Records []*models.DetectionRecord
}

// Injected reports whether the rows travel with the configuration
func (s DataSource) Injected() bool {
	return s.Records != nil
}

// FromURL returns a data source the renderer loads over HTTP
func FromURL(url string) DataSource {
	return DataSource{URL: url}
}

// FromRecords returns a data source carrying pre-loaded records
func FromRecords(records []*models.DetectionRecord) DataSource {
	if records == nil {
		records = []*models.DetectionRecord{}
	}
	return DataSource{Records: records}
}

// ViewConfiguration is everything the renderer needs to present detections
type ViewConfiguration struct {
	MountPoint       string
	Layout           string
	MovableColumns   bool
	ResponsiveLayout string
	Columns          []ColumnSpec
	InitialSort      []SortEntry
	Source           DataSource
}

func rank(r int) *int {
	return &r
}

// Build assembles the detection table configuration bound to source.
// An empty source falls back to DefaultDataURL.
func Build(source DataSource) ViewConfiguration {
	if !source.Injected() && source.URL == "" {
		source.URL = DefaultDataURL
	}

	return ViewConfiguration{
		MountPoint:       MountPoint,
		Layout:           LayoutFitColumns,
		MovableColumns:   true,
		ResponsiveLayout: ResponsiveHide,
		Columns: []ColumnSpec{
			{Title: "ID", Field: FieldID, Sorter: SortAlphanum, WidthGrow: 1.5, Responsive: rank(9), BottomCalc: CalcCount},
			{Title: "Phone Number", Field: FieldPhoneNumber, Sorter: SortString, WidthGrow: 1, Responsive: rank(8)},
			{Title: "Time", Field: FieldTime, Sorter: SortString, WidthGrow: 1, Responsive: rank(NeverHide)},
			{Title: "Temperature", Field: FieldTemperature, Sorter: SortNumber, Width: 115, Align: AlignCenter},
			{Title: "Humidity", Field: FieldHumidity, Sorter: SortNumber, Width: 115, Align: AlignCenter},
			{Title: "Weight", Field: FieldWeight, Sorter: SortNumber, Width: 115, Align: AlignCenter},
			{Title: "Snake RFID", Field: FieldRFID, Sorter: SortAlphanum, WidthGrow: 1, Responsive: rank(NeverHide)},
			{Title: "Skink RFIDs", Field: FieldSkinkRFIDs, Sorter: SortAlphanum, WidthGrow: 3, Responsive: rank(7)},
		},
		InitialSort: []SortEntry{
			{Column: FieldTime, Dir: Descending},
		},
		Source: source,
	}
}

// Column returns the column bound to field
func (v ViewConfiguration) Column(field string) (ColumnSpec, bool) {
	for _, c := range v.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Titles lists the column titles in display order
func (v ViewConfiguration) Titles() []string {
	titles := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		titles[i] = c.Title
	}
	return titles
}
