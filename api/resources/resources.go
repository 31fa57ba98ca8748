// FilePath: api/resources/resources.go
package resources

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/report"
	"github.com/smartboa/sbsbs/internal/stationservice"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	SMS         *SMSHandlers
	Report      *ReportHandlers
	Detections  *DetectionHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     http.Handler
}

// NewResources creates a new Resources instance
func NewResources(svc *stationservice.StationService, renderer *report.Renderer, dataURL string) *Resources {
	return &Resources{
		SMS:         NewSMSHandlers(svc),
		Report:      &ReportHandlers{service: svc, renderer: renderer, dataURL: dataURL},
		Detections:  &DetectionHandlers{service: svc},
		HealthCheck: Health,
		Metrics:     http.NotFoundHandler(),
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h http.Handler) {
	r.Metrics = h
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// @Summary Health check
// @Description Reports that the hub is up and which version is running
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Router /v1/health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: nuts.GetVersion()})
}

// asAPIError keeps typed errors from the service layer and wraps anything else
func asAPIError(err error, msg string) *errors.APIError {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return errors.NewInternalError(msg, err)
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondWithJSON encodes before writing the status so a payload that cannot
// be encoded turns into a 500 instead of a 200 with a truncated body
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		respondWithError(w, errors.NewInternalError("failed to encode response", err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	buf.WriteTo(w)
}
