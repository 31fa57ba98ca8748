package stationservice

import (
	"context"
	stderrors "errors"

	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// RecordMessage turns an inbound station SMS into a stored detection.
// Incomplete, unparsable, implausible and repeated messages are not stored
// and come back as validation errors; repeats wrap repository.ErrDuplicate.
func (s *StationService) RecordMessage(ctx context.Context, msg *models.InboundSMS) (*models.DetectionRecord, error) {
	if msg == nil || !msg.Complete() {
		s.emit(EventDetectionRejected, messageID(msg), "incomplete message")
		return nil, errors.NewValidationError("MessageSid, From and Body are required", nil)
	}

	record, err := msg.ToDetection()
	if err != nil {
		s.emit(EventDetectionRejected, msg.MessageSid, err.Error())
		return nil, errors.NewValidationError("unreadable message body", err)
	}
	if err := record.Validate(); err != nil {
		s.emit(EventDetectionRejected, msg.MessageSid, err.Error())
		return nil, errors.NewValidationError("implausible detection", err)
	}

	if s.Guard != nil {
		first, err := s.Guard.FirstSeen(ctx, record.ID)
		if err != nil {
			// an unavailable guard must not lose detections, storage still rejects repeats
			nuts.L.Warnf("[StationService] Replay guard unavailable for %s: %v", record.ID, err)
		} else if !first {
			s.emit(EventDetectionDuplicate, record.ID, "replayed delivery")
			return nil, errors.NewValidationError("message "+record.ID+" already received", repository.ErrDuplicate)
		}
	}

	if err := s.Detections.Append(ctx, record); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			s.emit(EventDetectionDuplicate, record.ID, "already stored")
			return nil, err
		}
		if s.Guard != nil {
			if ferr := s.Guard.Forget(ctx, record.ID); ferr != nil {
				nuts.L.Warnf("[StationService] Failed to release %s in replay guard: %v", record.ID, ferr)
			}
		}
		return nil, err
	}

	nuts.L.Infof("[StationService] Stored detection %s from %s (snake %s, %d skinks)",
		record.ID, record.PhoneNumber, record.RFID, len(record.SkinkRFIDs))
	s.emit(EventDetectionStored, record.ID, record.RFID)
	return record, nil
}

// ListDetections returns every stored detection in insertion order
func (s *StationService) ListDetections(ctx context.Context) ([]*models.DetectionRecord, error) {
	return s.Detections.List(ctx)
}

// GetDetection returns a single detection by message id
func (s *StationService) GetDetection(ctx context.Context, id string) (*models.DetectionRecord, error) {
	return s.Detections.Get(ctx, id)
}

// CountDetections returns the number of stored detections
func (s *StationService) CountDetections(ctx context.Context) (int, error) {
	return s.Detections.Count(ctx)
}

func messageID(msg *models.InboundSMS) string {
	if msg == nil {
		return ""
	}
	return msg.MessageSid
}
