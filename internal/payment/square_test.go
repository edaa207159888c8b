package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *SquareGateway {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSquareGateway(SquareConfig{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		LocationID:  "LOC-1",
	})
}

func TestCreatePayment_Success(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth, gotVersion string

	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/payments", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Square-Version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"payment":{"id":"PAY-1","status":"COMPLETED","customer_id":"CUST-1","amount_money":{"amount":100000,"currency":"USD"},"receipt_url":"https://squareup.com/receipt/1"}}`))
	})

	p, err := gateway.CreatePayment(context.Background(), &CreatePaymentRequest{
		SourceID:       "cnon:card-nonce",
		IdempotencyKey: "attempt-1",
		Amount:         Money{Amount: 100000, Currency: "USD"},
		Autocomplete:   true,
		Note:           "deposit",
	})
	require.NoError(t, err)

	assert.Equal(t, "PAY-1", p.ID)
	assert.Equal(t, "COMPLETED", p.Status)
	assert.Equal(t, "CUST-1", p.CustomerID)
	assert.Equal(t, int64(100000), p.Amount.Amount)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, squareVersion, gotVersion)
	assert.Equal(t, "cnon:card-nonce", gotBody["source_id"])
	assert.Equal(t, "attempt-1", gotBody["idempotency_key"])
	assert.Equal(t, "LOC-1", gotBody["location_id"])
}

func TestCreatePayment_ProcessorError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"errors":[{"category":"PAYMENT_METHOD_ERROR","code":"CARD_DECLINED","detail":"Card declined."}]}`))
	})

	_, err := gateway.CreatePayment(context.Background(), &CreatePaymentRequest{
		SourceID: "cnon:bad", IdempotencyKey: "a", Amount: Money{Amount: 100000, Currency: "USD"},
	})

	var pe *ProcessorError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "CARD_DECLINED", pe.Code)
	assert.Equal(t, "PAYMENT_METHOD_ERROR", pe.Category)
	assert.Equal(t, "Card declined.", pe.Detail)
	assert.Equal(t, http.StatusPaymentRequired, pe.StatusCode)
}

func TestCreatePayment_MalformedErrorBody(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := gateway.CreatePayment(context.Background(), &CreatePaymentRequest{
		SourceID: "cnon:x", IdempotencyKey: "a", Amount: Money{Amount: 100000, Currency: "USD"},
	})

	var pe *ProcessorError
	assert.False(t, errors.As(err, &pe))
	assert.ErrorContains(t, err, "status 502")
}

func TestCreateCustomer_Success(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/customers", r.URL.Path)
		w.Write([]byte(`{"customer":{"id":"CUST-9"}}`))
	})

	c, err := gateway.CreateCustomer(context.Background(), &CreateCustomerRequest{ReferenceID: "attempt-1"})
	require.NoError(t, err)
	assert.Equal(t, "CUST-9", c.ID)
}

func TestCreatePaymentLink_Success(t *testing.T) {
	var gotBody map[string]interface{}
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/online-checkout/payment-links", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"payment_link":{"url":"https://square.link/u/generated"}}`))
	})

	url, err := gateway.CreatePaymentLink(context.Background(), 60000, "USD", "Elev8 Kitchens 20% deposit")
	require.NoError(t, err)
	assert.Equal(t, "https://square.link/u/generated", url)

	quickPay := gotBody["quick_pay"].(map[string]interface{})
	price := quickPay["price_money"].(map[string]interface{})
	assert.Equal(t, float64(60000), price["amount"])
	assert.Equal(t, "LOC-1", quickPay["location_id"])
	assert.NotEmpty(t, gotBody["idempotency_key"])
}

func TestSquareConfig_IsConfigured(t *testing.T) {
	assert.False(t, SquareConfig{}.IsConfigured())
	assert.False(t, SquareConfig{AccessToken: "t"}.IsConfigured())
	assert.True(t, SquareConfig{AccessToken: "t", LocationID: "l"}.IsConfigured())
}
