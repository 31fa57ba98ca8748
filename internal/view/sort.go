package view

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/smartboa/sbsbs/internal/models"
)

// Apply returns a copy of records ordered by the initial sort, the way the
// renderer orders them on first paint. The input slice is left untouched.
func (v ViewConfiguration) Apply(records []*models.DetectionRecord) []*models.DetectionRecord {
	sorted := slices.Clone(records)
	if sorted == nil {
		sorted = []*models.DetectionRecord{}
	}

	keys := make([]sortKey, 0, len(v.InitialSort))
	for _, entry := range v.InitialSort {
		col, ok := v.Column(entry.Column)
		if !ok {
			continue
		}
		keys = append(keys, sortKey{field: col.Field, kind: col.Sorter, dir: entry.Dir})
	}

	slices.SortStableFunc(sorted, func(a, b *models.DetectionRecord) int {
		for _, k := range keys {
			if c := k.compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// BottomCalc evaluates the aggregate declared on the column bound to field.
// The second result is false when the column has no aggregate.
func (v ViewConfiguration) BottomCalc(field string, records []*models.DetectionRecord) (int, bool) {
	col, ok := v.Column(field)
	if !ok {
		return 0, false
	}
	switch col.BottomCalc {
	case CalcCount:
		return len(records), true
	default:
		return 0, false
	}
}

// HideOrder lists the hideable columns in the order the renderer drops them
// as the table narrows. Higher responsive ranks go first; columns without a
// rank or with NeverHide are never listed.
func (v ViewConfiguration) HideOrder() []ColumnSpec {
	var hideable []ColumnSpec
	for _, c := range v.Columns {
		if c.Hideable() {
			hideable = append(hideable, c)
		}
	}
	slices.SortStableFunc(hideable, func(a, b ColumnSpec) int {
		return cmp.Compare(*b.Responsive, *a.Responsive)
	})
	return hideable
}

type sortKey struct {
	field string
	kind  SortKind
	dir   Direction
}

func (k sortKey) compare(a, b *models.DetectionRecord) int {
	var c int
	switch k.kind {
	case SortNumber:
		c = cmp.Compare(numberValue(a, k.field), numberValue(b, k.field))
	case SortAlphanum:
		c = compareAlphanum(textValue(a, k.field), textValue(b, k.field))
	default:
		c = strings.Compare(textValue(a, k.field), textValue(b, k.field))
	}
	if k.dir == Descending {
		return -c
	}
	return c
}

func numberValue(r *models.DetectionRecord, field string) float64 {
	switch field {
	case FieldTemperature:
		return r.Temperature
	case FieldHumidity:
		return r.Humidity
	case FieldWeight:
		return r.Weight
	}
	return 0
}

func textValue(r *models.DetectionRecord, field string) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldPhoneNumber:
		return r.PhoneNumber
	case FieldRFID:
		return r.RFID
	case FieldSkinkRFIDs:
		return strings.Join(r.SkinkRFIDs, ", ")
	case FieldTime:
		// same text the feed carries, which the renderer compares as strings
		return r.Time.UTC().Format(models.JSONTimeLayout)
	}
	return ""
}

// compareAlphanum orders strings so that digit runs compare by value,
// e.g. "R2" < "R10".
func compareAlphanum(a, b string) int {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if c := cmp.Compare(len(na), len(nb)); c != 0 {
				return c
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if c := cmp.Compare(unicode.ToLower(ar[i]), unicode.ToLower(br[j])); c != 0 {
			return c
		}
		i++
		j++
	}
	return cmp.Compare(len(ar)-i, len(br)-j)
}
