package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *DetectionRecord {
	return &DetectionRecord{
		ID:          "SM123",
		PhoneNumber: "+23054000000",
		Time:        time.UnixMilli(1548460799000).UTC(),
		Temperature: 28.5,
		Humidity:    71,
		Weight:      412.25,
		RFID:        "900215000123456",
		SkinkRFIDs:  TagList{"S1", "S2"},
	}
}

func TestInboundSMSToDetection(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *DetectionRecord
		wantErr bool
	}{
		{
			name: "legacy body",
			body: "1548460799000,R1,28.5,412.25",
			want: &DetectionRecord{
				ID: "SM1", PhoneNumber: "+2305", Time: time.UnixMilli(1548460799000).UTC(),
				RFID: "R1", Temperature: 28.5, Weight: 412.25, SkinkRFIDs: TagList{},
			},
		},
		{
			name: "current body with skinks",
			body: " 1548460799000, R1 ,28.5,70,412.25,S1,,S2 ",
			want: &DetectionRecord{
				ID: "SM1", PhoneNumber: "+2305", Time: time.UnixMilli(1548460799000).UTC(),
				RFID: "R1", Temperature: 28.5, Humidity: 70, Weight: 412.25, SkinkRFIDs: TagList{"S1", "S2"},
			},
		},
		{
			name: "current body without skinks",
			body: "1548460799000,R1,28.5,70,412.25",
			want: &DetectionRecord{
				ID: "SM1", PhoneNumber: "+2305", Time: time.UnixMilli(1548460799000).UTC(),
				RFID: "R1", Temperature: 28.5, Humidity: 70, Weight: 412.25, SkinkRFIDs: TagList{},
			},
		},
		{name: "too few fields", body: "1548460799000,R1,28.5", wantErr: true},
		{name: "bad epoch", body: "yesterday,R1,28.5,412", wantErr: true},
		{name: "bad reading", body: "1548460799000,R1,warm,412", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sms := &InboundSMS{MessageSid: "SM1", From: "+2305", Body: tt.body}
			got, err := sms.ToDetection()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToDetection() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInboundSMSComplete(t *testing.T) {
	assert.True(t, (&InboundSMS{MessageSid: "SM1", From: "+1", Body: "x"}).Complete())
	assert.False(t, (&InboundSMS{MessageSid: "SM1", From: "+1"}).Complete())
	assert.False(t, (&InboundSMS{From: "+1", Body: "x"}).Complete())
}

func TestDetectionRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DetectionRecord)
		ok     bool
	}{
		{"valid", func(*DetectionRecord) {}, true},
		{"missing id", func(d *DetectionRecord) { d.ID = "" }, false},
		{"missing phone", func(d *DetectionRecord) { d.PhoneNumber = "" }, false},
		{"missing rfid", func(d *DetectionRecord) { d.RFID = "" }, false},
		{"epoch zero", func(d *DetectionRecord) { d.Time = time.UnixMilli(0) }, false},
		{"too cold", func(d *DetectionRecord) { d.Temperature = -10.5 }, false},
		{"too hot", func(d *DetectionRecord) { d.Temperature = 60.1 }, false},
		{"boundary temperature", func(d *DetectionRecord) { d.Temperature = 60 }, true},
		{"humidity over 100", func(d *DetectionRecord) { d.Humidity = 101 }, false},
		{"negative weight", func(d *DetectionRecord) { d.Weight = -1 }, false},
		{"zero weight", func(d *DetectionRecord) { d.Weight = 0 }, true},
		{"NaN temperature", func(d *DetectionRecord) { d.Temperature = math.NaN() }, false},
		{"NaN humidity", func(d *DetectionRecord) { d.Humidity = math.NaN() }, false},
		{"infinite weight", func(d *DetectionRecord) { d.Weight = math.Inf(1) }, false},
		{"last second of 9999", func(d *DetectionRecord) { d.Time = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC) }, true},
		{"year 10000", func(d *DetectionRecord) { d.Time = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC) }, false},
		{"tag with separator", func(d *DetectionRecord) { d.SkinkRFIDs = TagList{"S1;S2"} }, false},
		{"empty tag", func(d *DetectionRecord) { d.SkinkRFIDs = TagList{"S1", ""} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validRecord()
			tt.mutate(d)
			err := d.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStorageRowRoundTrip(t *testing.T) {
	d := validRecord()
	row := d.ToRow()
	require.Len(t, row, StorageColumns)
	assert.Equal(t, "1548460799000", row[2])
	assert.Equal(t, "S1;S2", row[7])

	got, err := ParseRow(row)
	require.NoError(t, err)
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("ParseRow() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRowRejectsMalformed(t *testing.T) {
	_, err := ParseRow([]string{"SM1", "+1"})
	assert.Error(t, err)

	row := validRecord().ToRow()
	row[4] = "hot"
	_, err = ParseRow(row)
	assert.Error(t, err)
}

func TestTagListScan(t *testing.T) {
	var tags TagList
	require.NoError(t, tags.Scan("S1; S2;"))
	assert.Equal(t, TagList{"S1", "S2"}, tags)

	require.NoError(t, tags.Scan([]byte("")))
	assert.Equal(t, TagList{}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Empty(t, tags)

	assert.Error(t, tags.Scan(42))

	v, err := TagList{"A", "B"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "A;B", v)
}

func TestDetectionRecordMarshalJSONTime(t *testing.T) {
	d := validRecord()
	d.Time = d.Time.In(time.FixedZone("MUT", 4*3600))

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "2019-01-25T23:59:59.000Z", fields["time"])
	assert.Equal(t, "SM123", fields["id"])

	var back DetectionRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Time.Equal(validRecord().Time))
}
