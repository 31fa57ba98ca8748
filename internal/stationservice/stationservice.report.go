package stationservice

import (
	"bytes"
	"context"
	"io"

	"github.com/smartboa/sbsbs/internal/drive"
	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/report"
	nuts "github.com/vaudience/go-nuts"
)

// ExportCSV writes all detections in the storage line layout
func (s *StationService) ExportCSV(ctx context.Context, w io.Writer, header bool) error {
	records, err := s.Detections.List(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(w, records, header); err != nil {
		return errors.NewInternalError("failed to export detections", err)
	}
	return nil
}

// UploadReport exports every detection and uploads the file to Drive
func (s *StationService) UploadReport(ctx context.Context) (*drive.Result, error) {
	if s.Uploader == nil {
		return nil, errors.NewUploadError("drive upload is not configured", nil)
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, &buf, false); err != nil {
		return nil, err
	}

	result, err := s.Uploader.Upload(ctx, &buf)
	if err != nil {
		s.emit(EventReportUploadFailed, "", err.Error())
		return nil, errors.NewUploadError("failed to upload report", err)
	}

	nuts.L.Infof("[StationService] Report %s uploaded (%d bytes)", result.Name, buf.Len())
	s.emit(EventReportUploaded, result.Name, result.ID)
	return result, nil
}
