package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteHandler(t *testing.T) *QuoteHandler {
	t.Helper()
	clock := FixedClock{Instant: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	return NewQuoteHandler(NewEngine(DefaultConfig(), clock, nil), nil)
}

func postQuote(t *testing.T, h *QuoteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Quote(w, req)
	return w
}

func TestQuoteHandler(t *testing.T) {
	h := quoteHandler(t)

	w := postQuote(t, h, `{"consultationFee": 1000}`)
	require.Equal(t, http.StatusOK, w.Code)

	var payment Payment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payment))
	assert.Equal(t, 1000.0, payment.ConsultationFee)
	assert.Equal(t, 70.0, payment.PlatformFee)
	assert.Equal(t, 1070.0, payment.TotalAmount)
	assert.Nil(t, payment.EmergencySurcharge)
	assert.Nil(t, payment.SubscriptionDiscount)
}

func TestQuoteHandlerEmergency(t *testing.T) {
	h := quoteHandler(t)

	// Midday, full availability: base 1.5x multiplier only.
	w := postQuote(t, h, `{"consultationFee": 1000, "isEmergency": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var payment Payment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payment))
	require.NotNil(t, payment.EmergencySurcharge)
	assert.Equal(t, 500.0, *payment.EmergencySurcharge)
	assert.Equal(t, 1570.0, payment.TotalAmount)
}

func TestQuoteHandlerSubscription(t *testing.T) {
	h := quoteHandler(t)

	body := `{
		"consultationFee": 1000,
		"patient": {"subscription": {"status": "active"}}
	}`
	w := postQuote(t, h, body)
	require.Equal(t, http.StatusOK, w.Code)

	var payment Payment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payment))
	require.NotNil(t, payment.SubscriptionDiscount)
	assert.Equal(t, 100.0, *payment.SubscriptionDiscount)
	assert.Equal(t, 970.0, payment.TotalAmount)
}

func TestQuoteHandlerBadInput(t *testing.T) {
	h := quoteHandler(t)

	w := postQuote(t, h, `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postQuote(t, h, `{"consultationFee": -10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postQuote(t, h, `{"consultationFee": 500, "doctorAvailability": 1.4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandlerMethodNotAllowed(t *testing.T) {
	h := quoteHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	w := httptest.NewRecorder()
	h.Quote(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
