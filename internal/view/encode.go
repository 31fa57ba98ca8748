package view

import (
	"encoding/json"

	"github.com/smartboa/sbsbs/internal/models"
)

type columnOptions struct {
	Title      string    `json:"title"`
	Field      string    `json:"field,omitempty"`
	Sorter     SortKind  `json:"sorter,omitempty"`
	Width      int       `json:"width,omitempty"`
	WidthGrow  float64   `json:"widthGrow,omitempty"`
	Align      Alignment `json:"align,omitempty"`
	Responsive *int      `json:"responsive,omitempty"`
	BottomCalc Calc      `json:"bottomCalc,omitempty"`
}

type sortOptions struct {
	Column string    `json:"column"`
	Dir    Direction `json:"dir"`
}

type tableOptions struct {
	Layout           string                    `json:"layout"`
	MovableColumns   bool                      `json:"movableColumns"`
	ResponsiveLayout string                    `json:"responsiveLayout"`
	Columns          []columnOptions           `json:"columns"`
	InitialSort      []sortOptions             `json:"initialSort"`
	AjaxURL          string                    `json:"ajaxURL,omitempty"`
	Data             []*models.DetectionRecord `json:"data,omitempty"`
}

// Options is the renderer's constructor argument for this configuration
type Options struct {
	MountPoint string       `json:"mountPoint"`
	Table      tableOptions `json:"table"`
}

// Options converts the configuration into the renderer's option object
func (v ViewConfiguration) Options() Options {
	table := tableOptions{
		Layout:           v.Layout,
		MovableColumns:   v.MovableColumns,
		ResponsiveLayout: v.ResponsiveLayout,
		Columns:          make([]columnOptions, len(v.Columns)),
		InitialSort:      make([]sortOptions, len(v.InitialSort)),
	}
	for i, c := range v.Columns {
		table.Columns[i] = columnOptions(c)
	}
	for i, s := range v.InitialSort {
		table.InitialSort[i] = sortOptions(s)
	}
	if v.Source.Injected() {
		table.Data = v.Source.Records
	} else {
		table.AjaxURL = v.Source.URL
	}
	return Options{MountPoint: v.MountPoint, Table: table}
}

// MarshalJSON encodes the configuration as renderer options
func (v ViewConfiguration) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Options())
}
