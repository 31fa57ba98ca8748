package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Plausible sensor ranges for the basking station (Mauritius sits between 5C and 40C).
const (
	MinTemperature = -10.0
	MaxTemperature = 60.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// TagSeparator joins skink tags inside a single CSV field or database column.
const TagSeparator = ";"

// MaxYear is the last year a detection time can carry and still encode as RFC 3339
const MaxYear = 9999

// JSONTimeLayout is RFC 3339 in UTC with fixed millisecond width, so encoded
// times order the same as text and as instants.
const JSONTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// TagList is an ordered list of RFID tags stored as one text column
type TagList []string

// Value implements the driver.Valuer interface
func (t TagList) Value() (driver.Value, error) {
	return strings.Join(t, TagSeparator), nil
}

// Scan implements the sql.Scanner interface
func (t *TagList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = TagList{}
	case string:
		*t = ParseTagList(v)
	case []byte:
		*t = ParseTagList(string(v))
	default:
		return fmt.Errorf("unsupported tag list type %T", value)
	}
	return nil
}

// ParseTagList splits a joined tag field, dropping empty entries
func ParseTagList(s string) TagList {
	tags := TagList{}
	for _, tag := range strings.Split(s, TagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DetectionRecord is one snake detection reported by a basking station
type DetectionRecord struct {
	ID          string    `json:"id" db:"id"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	Time        time.Time `json:"time" db:"detected_at"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	Weight      float64   `json:"weight" db:"weight"`
	RFID        string    `json:"rfid" db:"rfid"`
	SkinkRFIDs  TagList   `json:"skinkRfids" db:"skink_rfids"`
}

// Validate checks that every field carries a plausible reading.
// It returns a description of the first problem found.
func (d *DetectionRecord) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("missing message id")
	case d.PhoneNumber == "":
		return fmt.Errorf("missing phone number")
	case d.RFID == "":
		return fmt.Errorf("missing snake rfid")
	case d.Time.UnixMilli() <= 0:
		return fmt.Errorf("detection time %d is not after the epoch", d.Time.UnixMilli())
	case d.Time.UTC().Year() > MaxYear:
		return fmt.Errorf("detection time %d is after year %d", d.Time.UnixMilli(), MaxYear)
	case !finite(d.Temperature, d.Humidity, d.Weight):
		return fmt.Errorf("readings must be finite numbers")
	case d.Temperature < MinTemperature || d.Temperature > MaxTemperature:
		return fmt.Errorf("temperature %.1f outside [%.0f, %.0f]", d.Temperature, MinTemperature, MaxTemperature)
	case d.Humidity < MinHumidity || d.Humidity > MaxHumidity:
		return fmt.Errorf("humidity %.1f outside [%.0f, %.0f]", d.Humidity, MinHumidity, MaxHumidity)
	case d.Weight < 0:
		return fmt.Errorf("weight %.1f is negative", d.Weight)
	}
	for _, tag := range d.SkinkRFIDs {
		if tag == "" || strings.Contains(tag, TagSeparator) {
			return fmt.Errorf("invalid skink tag %q", tag)
		}
	}
	return nil
}

// MarshalJSON encodes Time with JSONTimeLayout
func (d DetectionRecord) MarshalJSON() ([]byte, error) {
	type plain DetectionRecord
	return json.Marshal(struct {
		plain
		Time string `json:"time"`
	}{plain(d), d.Time.UTC().Format(JSONTimeLayout)})
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// StorageColumns is the number of fields in a stored detection line
const StorageColumns = 8

// StorageHeader names the stored columns, used for exports
var StorageHeader = []string{"id", "phoneNumber", "epochMillis", "rfid", "temperature", "humidity", "weight", "skinkRfids"}

// ToRow encodes the record in the storage line layout
func (d *DetectionRecord) ToRow() []string {
	return []string{
		d.ID,
		d.PhoneNumber,
		strconv.FormatInt(d.Time.UnixMilli(), 10),
		d.RFID,
		formatFloat(d.Temperature),
		formatFloat(d.Humidity),
		formatFloat(d.Weight),
		strings.Join(d.SkinkRFIDs, TagSeparator),
	}
}

// ParseRow decodes a storage line produced by ToRow
func ParseRow(row []string) (*DetectionRecord, error) {
	if len(row) != StorageColumns {
		return nil, fmt.Errorf("expected %d fields, got %d", StorageColumns, len(row))
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid epoch millis %q: %w", row[2], err)
	}
	readings, err := parseFloats(row[4], row[5], row[6])
	if err != nil {
		return nil, err
	}
	return &DetectionRecord{
		ID:          row[0],
		PhoneNumber: row[1],
		Time:        time.UnixMilli(millis).UTC(),
		RFID:        row[3],
		Temperature: readings[0],
		Humidity:    readings[1],
		Weight:      readings[2],
		SkinkRFIDs:  ParseTagList(row[7]),
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloats(values ...string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, s := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reading %q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}
