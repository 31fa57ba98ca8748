package stationservice

import (
	"context"
	"io"

	"github.com/smartboa/sbsbs/internal/dedupe"
	"github.com/smartboa/sbsbs/internal/drive"
	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Events emitted by the service. Handlers receive the message id (or the
// report name for EventReportUploaded) and a detail string.
const (
	EventDetectionStored    = "detection.stored"
	EventDetectionRejected  = "detection.rejected"
	EventDetectionDuplicate = "detection.duplicate"
	EventReportUploaded     = "report.uploaded"
	EventReportUploadFailed = "report.upload_failed"
)

// ReportUploader stores an exported report somewhere outside the hub
type ReportUploader interface {
	Upload(ctx context.Context, r io.Reader) (*drive.Result, error)
}

// StationService binds storage, replay protection and report upload
type StationService struct {
	Detections repository.DetectionRepository
	Guard      dedupe.Guard
	Uploader   ReportUploader
	events     *nuts.EventEmitter
}

// New creates a new StationService. guard and uploader may be nil.
func New(detections repository.DetectionRepository, guard dedupe.Guard, uploader ReportUploader) *StationService {
	return &StationService{
		Detections: detections,
		Guard:      guard,
		Uploader:   uploader,
		events:     nuts.NewEventEmitter(),
	}
}

// Validate checks if all required dependencies are initialized
func (s *StationService) Validate() error {
	if s.Detections == nil {
		return ErrMissingDependency("detections")
	}
	if s.events == nil {
		return ErrMissingDependency("events")
	}
	return nil
}

// UploadEnabled reports whether reports can be pushed to Drive
func (s *StationService) UploadEnabled() bool {
	return s.Uploader != nil
}

// OnEvent registers handler for a service event
func (s *StationService) OnEvent(event string, handler func(subject, detail string)) {
	s.events.On(event, nuts.NID("lsn", 8), func(args ...interface{}) {
		var subject, detail string
		if len(args) > 0 {
			subject, _ = args[0].(string)
		}
		if len(args) > 1 {
			detail, _ = args[1].(string)
		}
		handler(subject, detail)
	})
}

func (s *StationService) emit(event, subject, detail string) {
	s.events.Emit(event, subject, detail)
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
