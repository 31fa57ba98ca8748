// FilePath: api/resources/api.resource.sms.go
package resources

import (
	"net/http"

	"github.com/gorilla/schema"
	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/stationservice"
	nuts "github.com/vaudience/go-nuts"
)

// emptyTwiML tells Twilio not to send a reply SMS
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// SMSHandlers receives station messages relayed by Twilio
type SMSHandlers struct {
	service *stationservice.StationService
	decoder *schema.Decoder
}

func NewSMSHandlers(svc *stationservice.StationService) *SMSHandlers {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &SMSHandlers{service: svc, decoder: decoder}
}

// @Summary Receive a station SMS
// @Description Twilio webhook. The body carries epochMillis,rfid,temperature[,humidity],weight[,skink...].
// @Description Always answers with empty TwiML; messages that cannot be stored are only logged.
// @Tags sms
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param MessageSid formData string true "Twilio message id"
// @Param From formData string true "Station phone number"
// @Param Body formData string true "Detection payload"
// @Success 200 {string} string "empty TwiML response"
// @Failure 403 {object} errors.APIError
// @Router /sms [post]
func (h *SMSHandlers) ReceiveSMS(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	defer respondWithTwiML(w)

	if err := r.ParseForm(); err != nil {
		nuts.L.Warnf("[SMS] %s: unreadable webhook form: %v", requestID, err)
		return
	}

	var msg models.InboundSMS
	if err := h.decoder.Decode(&msg, r.PostForm); err != nil {
		nuts.L.Warnf("[SMS] %s: failed to decode webhook form: %v", requestID, err)
		return
	}

	nuts.L.Debugf("[SMS] %s: message %s from %s: %q", requestID, msg.MessageSid, msg.From, msg.Body)
	if _, err := h.service.RecordMessage(r.Context(), &msg); err != nil {
		nuts.L.Warnf("[SMS] %s: message %s not stored: %v", requestID, msg.MessageSid, err)
	}
}

func respondWithTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(emptyTwiML))
}
