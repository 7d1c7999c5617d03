package stripe

import (
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
)

// Client covers the slice of the payments API the order flow needs: an
// intent created at checkout for card orders, refunded when the order is
// cancelled.
type Client interface {
	CreatePaymentIntent(amount int64, currency string, description string) (*stripe.PaymentIntent, error)
	RefundPayment(paymentIntentID string) (*stripe.Refund, error)
}

type stripeClient struct{}

func NewStripeClient(apiKey string) Client {
	stripe.Key = apiKey

	return &stripeClient{}
}

// PaymentIntent == "planned payment" waiting for the client to confirm.
func (s *stripeClient) CreatePaymentIntent(amount int64, currency string, description string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}

	return paymentintent.New(params)
}

// RefundPayment implements Client.
func (s *stripeClient) RefundPayment(paymentIntentID string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}

	return refund.New(params)
}
