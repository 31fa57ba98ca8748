package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InboundSMS holds the Twilio webhook parameters the hub cares about
type InboundSMS struct {
	MessageSid string `schema:"MessageSid"`
	From       string `schema:"From"`
	Body       string `schema:"Body"`
}

// Body layouts sent by the station firmware
const (
	legacyBodyFields  = 4 // epochMillis,rfid,temperature,weight
	currentBodyFields = 5 // epochMillis,rfid,temperature,humidity,weight[,skink...]
)

// Complete reports whether all required webhook parameters are present
func (m *InboundSMS) Complete() bool {
	return m.MessageSid != "" && m.From != "" && m.Body != ""
}

// ToDetection parses the message body into a detection record.
// The record is not validated.
func (m *InboundSMS) ToDetection() (*DetectionRecord, error) {
	fields := strings.Split(strings.TrimSpace(m.Body), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < legacyBodyFields {
		return nil, fmt.Errorf("body has %d fields, need at least %d", len(fields), legacyBodyFields)
	}

	millis, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid epoch millis %q: %w", fields[0], err)
	}

	record := &DetectionRecord{
		ID:          m.MessageSid,
		PhoneNumber: m.From,
		Time:        time.UnixMilli(millis).UTC(),
		RFID:        fields[1],
		SkinkRFIDs:  TagList{},
	}

	var readings []float64
	if len(fields) == legacyBodyFields {
		readings, err = parseFloats(fields[2], fields[3])
		if err != nil {
			return nil, err
		}
		record.Temperature, record.Weight = readings[0], readings[1]
		return record, nil
	}

	readings, err = parseFloats(fields[2], fields[3], fields[4])
	if err != nil {
		return nil, err
	}
	record.Temperature, record.Humidity, record.Weight = readings[0], readings[1], readings[2]
	for _, tag := range fields[currentBodyFields:] {
		if tag != "" {
			record.SkinkRFIDs = append(record.SkinkRFIDs, tag)
		}
	}
	return record, nil
}
