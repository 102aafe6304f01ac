// Package payment wraps the Stripe API surface the ticket workflow needs:
// opening a hosted checkout session for a paid ticket and reading a session's
// payment status back during confirmation.
package payment

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
)

// Currency every checkout session is charged in. Amounts are minor units.
const Currency = stripe.CurrencyZAR

// InitStripe sets the API key for all subsequent calls.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// CreateCheckoutSession creates a product/price pair for the event and opens
// a hosted checkout session for it. The ctx deadline bounds every Stripe
// round-trip: a timeout here means no session and the caller persists
// nothing.
func CreateCheckoutSession(ctx context.Context, eventTitle, imageURL string, amount int64, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	productParams := &stripe.ProductParams{
		Name: stripe.String(eventTitle),
	}
	productParams.Context = ctx
	if imageURL != "" {
		productParams.Images = stripe.StringSlice([]string{imageURL})
	}

	prod, err := product.New(productParams)
	if err != nil {
		return nil, err
	}

	priceParams := &stripe.PriceParams{
		UnitAmount: stripe.Int64(amount),
		Currency:   stripe.String(string(Currency)),
		Product:    stripe.String(prod.ID),
	}
	priceParams.Context = ctx

	sessionPrice, err := price.New(priceParams)
	if err != nil {
		return nil, err
	}

	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(sessionPrice.ID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	sessionParams.Context = ctx

	return session.New(sessionParams)
}

// GetSession retrieves a checkout session by id.
func GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return session.Get(sessionID, params)
}

// SessionPaid reports whether the session has completed payment.
func SessionPaid(checkout *stripe.CheckoutSession) bool {
	return checkout != nil && checkout.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
}
