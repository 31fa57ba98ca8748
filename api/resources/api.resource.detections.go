package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smartboa/sbsbs/internal/stationservice"
	nuts "github.com/vaudience/go-nuts"
)

// DetectionHandlers exposes single stored detections
type DetectionHandlers struct {
	service *stationservice.StationService
}

type countResponse struct {
	Count int `json:"count"`
}

// @Summary Get a detection
// @Description Get a stored detection by its Twilio message id
// @Tags detections
// @Produce json
// @Param id path string true "MessageSid"
// @Success 200 {object} models.DetectionRecord
// @Failure 404 {object} errors.APIError
// @Router /v1/detections/{id} [get]
func (h *DetectionHandlers) GetDetection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.service.GetDetection(r.Context(), id)
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to get detection").WithRequestID(nuts.NID("req", 12)))
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// @Summary Count detections
// @Tags detections
// @Produce json
// @Success 200 {object} countResponse
// @Router /v1/detections/count [get]
func (h *DetectionHandlers) CountDetections(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountDetections(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to count detections").WithRequestID(nuts.NID("req", 12)))
		return
	}

	respondWithJSON(w, http.StatusOK, countResponse{Count: n})
}
