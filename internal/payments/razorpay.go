package payments

import (
	"context"

	"github.com/pkg/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// ErrGatewayInconsistent flags a "successful" gateway reply that is missing
// fields we depend on. Treated as failure, never as partial success.
var ErrGatewayInconsistent = errors.New("gateway response missing expected fields")

// GatewayOrder is the subset of a gateway order the checkout flow needs.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
}

// RefundResult is the gateway's acknowledgement of a refund request.
type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway abstracts the payment provider so order workflows can be tested
// without network calls.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string, notes map[string]interface{}) (*GatewayOrder, error)
	Refund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error)
}

// RazorpayGateway talks to Razorpay through the official SDK.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// ToPaise converts a rupee amount to the gateway's integer minor unit.
// This is the only place in the codebase rupees become paise.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type orderReply struct {
	order *GatewayOrder
	err   error
}

// CreateOrder raises a gateway order for the given paise amount. The SDK is
// not context-aware, so the call runs on the side and we honour the caller's
// deadline here.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, receipt string, notes map[string]interface{}) (*GatewayOrder, error) {
	ch := make(chan orderReply, 1)
	go func() {
		data := map[string]interface{}{
			"amount":   amountPaise,
			"currency": "INR",
			"receipt":  receipt,
			"notes":    notes,
		}
		resp, err := g.client.Order.Create(data, nil)
		if err != nil {
			ch <- orderReply{err: errors.Wrap(err, "razorpay order create")}
			return
		}

		id, _ := resp["id"].(string)
		if id == "" {
			ch <- orderReply{err: ErrGatewayInconsistent}
			return
		}
		amount, _ := resp["amount"].(float64)
		currency, _ := resp["currency"].(string)
		if currency == "" {
			currency = "INR"
		}
		ch <- orderReply{order: &GatewayOrder{ID: id, Amount: int64(amount), Currency: currency}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.order, r.err
	}
}

type refundReply struct {
	res *RefundResult
	err error
}

// Refund raises a full or partial refund against a captured payment.
func (g *RazorpayGateway) Refund(ctx context.Context, paymentID string, amountPaise int64) (*RefundResult, error) {
	ch := make(chan refundReply, 1)
	go func() {
		resp, err := g.client.Payment.Refund(paymentID, int(amountPaise), map[string]interface{}{}, nil)
		if err != nil {
			ch <- refundReply{err: errors.Wrap(err, "razorpay refund")}
			return
		}

		id, _ := resp["id"].(string)
		if id == "" {
			ch <- refundReply{err: ErrGatewayInconsistent}
			return
		}
		status, _ := resp["status"].(string)
		ch <- refundReply{res: &RefundResult{ID: id, Status: status}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.res, r.err
	}
}
