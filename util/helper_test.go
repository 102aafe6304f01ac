package util

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	str := RandomString(32)
	require.Len(t, str, 32)
	for _, c := range str {
		require.Contains(t, alphabet, string(c))
	}
}

func TestDiscountedPrice(t *testing.T) {
	testCases := []struct {
		price, discount, expected float64
	}{
		{100, 20, 80},
		{100, 0, 100},
		{100, 100, 0},
		{49.99, 10, 44.99},
		{33.33, 33, 22.33},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, DiscountedPrice(tc.price, tc.discount),
			"price=%.2f discount=%.0f", tc.price, tc.discount)
	}
}

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(8000), MinorUnits(80))
	require.Equal(t, int64(4499), MinorUnits(44.99))
	require.Equal(t, int64(0), MinorUnits(0))
}

func TestGenerateQR(t *testing.T) {
	uri, err := GenerateQR("Ticket ID: 64f1, Event ID: 64f2")
	require.NoError(t, err)

	// Valid data URI holding a decodable PNG payload
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	require.Equal(t, "\x89PNG", string(png[:4]))
}
