package util

import (
	"encoding/base64"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Global logger
var LOGGER = slog.New(slog.NewTextHandler(os.Stdout, nil))

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate a random string with length n. The character possible is defined in the alphabet constant
func RandomString(n int) string {
	var sb strings.Builder
	k := len(alphabet)

	for range n {
		c := alphabet[rand.Intn(k)]
		sb.WriteByte(c)
	}

	return sb.String()
}

// GenerateQR encodes content into a 256x256 PNG QR code and returns it as a
// base64 data URI, ready to be stored on a ticket and rendered by any client.
func GenerateQR(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RoundPrice rounds a monetary amount to 2 decimals.
func RoundPrice(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// DiscountedPrice applies a percentage discount (0-100) to price and rounds
// the result to 2 decimals.
func DiscountedPrice(price, discount float64) float64 {
	return RoundPrice(price * (1 - discount/100))
}

// MinorUnits converts a price in major currency units to the integer minor
// units Stripe expects.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
