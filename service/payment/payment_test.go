package payment

import (
	"context"
	"os"
	"testing"

	"github.com/Massamba505/Events-Api/util"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestMain(m *testing.M) {
	if os.Getenv("CI") != "" {
		util.LOGGER.Warn("CI environment, skip integration test")
		return
	}

	if os.Getenv("STRIPE_SECRET_KEY") == "" {
		util.LOGGER.Warn("STRIPE_SECRET_KEY not set, skip integration test")
		return
	}
	InitStripe(os.Getenv("STRIPE_SECRET_KEY"))

	os.Exit(m.Run())
}

func TestCheckoutSession(t *testing.T) {
	ctx := context.Background()

	session, err := CreateCheckoutSession(
		ctx,
		"Integration Test Event",
		"",
		8_000,
		"https://example.com/api/tickets/success/{CHECKOUT_SESSION_ID}",
		"https://example.com/api/tickets/cancel/{CHECKOUT_SESSION_ID}",
	)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotEmpty(t, session.ID)
	require.NotEmpty(t, session.URL)

	// Retrieve the session back; a fresh session is never paid
	fetched, err := GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, fetched.ID)
	require.False(t, SessionPaid(fetched))
	require.Equal(t, stripe.CheckoutSessionPaymentStatusUnpaid, fetched.PaymentStatus)
}
