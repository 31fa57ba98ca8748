package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/smartboa/sbsbs/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// SignatureHeader carries the request signature computed by Twilio
const SignatureHeader = "X-Twilio-Signature"

type TwilioConfig struct {
	AuthToken string
	// PublicURL is the scheme and host Twilio calls, e.g. https://sbsbs.example.org.
	// Empty means the request's own host is used.
	PublicURL string
}

type TwilioMiddleware struct {
	config TwilioConfig
}

func NewTwilioMiddleware(config TwilioConfig) *TwilioMiddleware {
	return &TwilioMiddleware{config: config}
}

// Enabled reports whether requests are checked at all
func (t *TwilioMiddleware) Enabled() bool {
	return t.config.AuthToken != ""
}

// Verify rejects webhook calls whose signature does not match the auth token
func (t *TwilioMiddleware) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		signature := r.Header.Get(SignatureHeader)
		if signature == "" {
			handleError(w, errors.NewAuthError("missing twilio signature", nil))
			return
		}
		if err := r.ParseForm(); err != nil {
			handleError(w, errors.NewValidationError("invalid form body", err))
			return
		}

		expected := Signature(t.config.AuthToken, t.requestURL(r), r.PostForm)
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			nuts.L.Warnf("[Twilio] Signature mismatch for %s from %s", r.URL.Path, r.RemoteAddr)
			handleError(w, errors.NewAuthError("invalid twilio signature", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *TwilioMiddleware) requestURL(r *http.Request) string {
	base := strings.TrimSuffix(t.config.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + r.URL.RequestURI()
}

// Signature computes the value Twilio sends in SignatureHeader: the full URL
// followed by every POST parameter name and value in name order, signed with
// HMAC-SHA1 and base64 encoded.
func Signature(authToken, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range form[k] {
			sb.WriteString(k)
			sb.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(sb.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	err.WithRequestID(nuts.NID("req", 12))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
