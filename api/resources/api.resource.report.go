// FilePath: api/resources/api.resource.report.go
package resources

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/report"
	"github.com/smartboa/sbsbs/internal/stationservice"
	"github.com/smartboa/sbsbs/internal/view"
	nuts "github.com/vaudience/go-nuts"
)

const exportFileName = "SBSBS.csv"

// ReportHandlers serves the report page and the feeds behind it
type ReportHandlers struct {
	service  *stationservice.StationService
	renderer *report.Renderer
	dataURL  string
}

// @Summary Report page
// @Description HTML page mounting the detection table, with a static fallback table
// @Tags report
// @Produce html
// @Success 200 {string} string "report page"
// @Failure 500 {object} errors.APIError
// @Router / [get]
func (h *ReportHandlers) GetReportPage(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	records, err := h.service.ListDetections(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to list detections").WithRequestID(requestID))
		return
	}

	var page bytes.Buffer
	if err := h.renderer.Render(&page, view.FromURL(h.dataURL), records, time.Now()); err != nil {
		respondWithError(w, asAPIError(err, "failed to render report").WithRequestID(requestID))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	page.WriteTo(w)
}

// @Summary Detection feed
// @Description All stored detections in insertion order
// @Tags report
// @Produce json
// @Success 200 {array} models.DetectionRecord
// @Failure 500 {object} errors.APIError
// @Router /report/data.json [get]
func (h *ReportHandlers) GetReportData(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListDetections(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to list detections").WithRequestID(nuts.NID("req", 12)))
		return
	}
	if records == nil {
		records = []*models.DetectionRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// @Summary Table configuration
// @Description The renderer configuration used by the report page
// @Tags report
// @Produce json
// @Success 200 {object} view.Options
// @Router /report/config.json [get]
func (h *ReportHandlers) GetReportConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, view.Build(view.FromURL(h.dataURL)))
}

// @Summary Export detections
// @Description Detections as CSV in the storage line layout
// @Tags report
// @Produce text/csv
// @Param header query bool false "Prepend a header row"
// @Success 200 {file} file
// @Failure 500 {object} errors.APIError
// @Router /report/export.csv [get]
func (h *ReportHandlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	header, _ := strconv.ParseBool(r.URL.Query().Get("header"))

	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf, header); err != nil {
		respondWithError(w, asAPIError(err, "failed to export detections").WithRequestID(nuts.NID("req", 12)))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// @Summary Upload report to Drive
// @Description Exports all detections and stores them as a new Drive file
// @Tags report
// @Produce json
// @Success 200 {object} drive.Result
// @Failure 502 {object} errors.APIError
// @Router /report/upload [post]
func (h *ReportHandlers) UploadReport(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	result, err := h.service.UploadReport(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to upload report").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
