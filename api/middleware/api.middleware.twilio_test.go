package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Example values from the Twilio security documentation.
const (
	docToken = "12345"
	docURL   = "https://mycompany.com/myapp.php?foo=1&bar=2"
)

func docForm() url.Values {
	return url.Values{
		"CallSid": {"CA1234567890ABCDE"},
		"Caller":  {"+12349013030"},
		"Digits":  {"1234"},
		"From":    {"+12349013030"},
		"To":      {"+18005551212"},
	}
}

func TestSignatureKnownValue(t *testing.T) {
	assert.Equal(t, "0/KCTR6DLpKmkAf8muzZqo1nDgQ=", Signature(docToken, docURL, docForm()))
}

func TestSignatureOrderIndependent(t *testing.T) {
	a := url.Values{"B": {"2"}, "A": {"1"}}
	b := url.Values{"A": {"1"}, "B": {"2"}}
	assert.Equal(t, Signature("t", "http://x/sms", a), Signature("t", "http://x/sms", b))
	assert.NotEqual(t, Signature("t", "http://x/sms", a), Signature("other", "http://x/sms", a))
}

func signedRequest(form url.Values, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

func TestVerify(t *testing.T) {
	form := url.Values{"MessageSid": {"SM1"}, "From": {"+230"}, "Body": {"1,R1,20,300"}}
	mw := NewTwilioMiddleware(TwilioConfig{AuthToken: "secret", PublicURL: "https://hub.example.org/"})
	valid := Signature("secret", "https://hub.example.org/sms", form)

	reached := false
	h := mw.Verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		assert.Equal(t, "SM1", r.PostForm.Get("MessageSid"))
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name      string
		signature string
		code      int
	}{
		{"valid", valid, http.StatusOK},
		{"missing", "", http.StatusForbidden},
		{"mismatch", Signature("wrong", "https://hub.example.org/sms", form), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached = false
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, signedRequest(form, tc.signature))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.code == http.StatusOK, reached)
		})
	}
}

func TestVerifyDisabledPassesThrough(t *testing.T) {
	mw := NewTwilioMiddleware(TwilioConfig{})
	assert.False(t, mw.Enabled())

	rec := httptest.NewRecorder()
	mw.Verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, signedRequest(url.Values{}, ""))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestVerifyUsesRequestHostWithoutPublicURL(t *testing.T) {
	form := url.Values{"Body": {"x"}}
	mw := NewTwilioMiddleware(TwilioConfig{AuthToken: "secret"})

	req := signedRequest(form, Signature("secret", "http://example.com/sms", form))
	rec := httptest.NewRecorder()
	mw.Verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
