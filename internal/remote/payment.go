package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// PaymentClient talks to the payment bridge, which fronts the external
// gateway. The bridge signs redirect URLs and verifies return signatures so
// no gateway secret ever lives in this process.
type PaymentClient struct {
	*Client
}

func NewPaymentClient(c *Client) *PaymentClient {
	return &PaymentClient{Client: c}
}

// CreateSession asks the bridge for a gateway redirect URL covering the
// given amount. The order ID rides along so the return callback can be
// matched back to the order.
func (c *PaymentClient) CreateSession(ctx context.Context, amount decimal.Decimal, orderInfo string, orderID int64) (string, error) {
	query := url.Values{}
	query.Set("amount", amount.String())
	query.Set("orderInfo", orderInfo)
	query.Set("orderId", strconv.FormatInt(orderID, 10))
	var redirectURL string
	if err := c.do(ctx, http.MethodPost, "/payment/create", query, nil, &redirectURL); err != nil {
		return "", fmt.Errorf("create payment session: %w", err)
	}
	return redirectURL, nil
}

// VerifyReturn forwards the gateway's raw return query untouched. Mutating
// or re-encoding any parameter breaks the signature check on the bridge.
func (c *PaymentClient) VerifyReturn(ctx context.Context, rawQuery string) (*GatewayResult, error) {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("verify payment return: %w", err)
	}
	var result GatewayResult
	if err := c.do(ctx, http.MethodGet, "/payment/return", query, nil, &result); err != nil {
		return nil, fmt.Errorf("verify payment return: %w", err)
	}
	return &result, nil
}
