package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orderfood/api/internal/remote"
)

func newPaymentClient(t *testing.T, handler http.Handler) *remote.PaymentClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return remote.NewPaymentClient(remote.NewClient(srv.URL, srv.Client()))
}

func TestCreateSessionReturnsRedirectURL(t *testing.T) {
	client := newPaymentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("amount") != "120000" || q.Get("orderId") != "42" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"https://gateway.example/pay?session=abc"`))
	}))

	url, err := client.CreateSession(context.Background(), decimal.NewFromInt(120000), "Order 42", 42)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if url != "https://gateway.example/pay?session=abc" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestVerifyReturnForwardsGatewayParams(t *testing.T) {
	client := newPaymentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("vnp_TxnRef") != "42" || q.Get("vnp_ResponseCode") != "00" {
			t.Errorf("gateway params not forwarded: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "orderId": 42, "transactionNo": "TX1", "amount": 120000}`))
	}))

	result, err := client.VerifyReturn(context.Background(), "vnp_TxnRef=42&vnp_ResponseCode=00")
	if err != nil {
		t.Fatalf("verify return: %v", err)
	}
	if result.Status != "success" || result.OrderID != 42 {
		t.Errorf("unexpected result %+v", result)
	}
	if !result.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("unexpected amount %s", result.Amount)
	}
}

func TestVerifyReturnRejectsMalformedQuery(t *testing.T) {
	client := newPaymentClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("malformed query must not reach the bridge")
	}))

	if _, err := client.VerifyReturn(context.Background(), "a=%zz"); err == nil {
		t.Error("expected a parse error")
	}
}
