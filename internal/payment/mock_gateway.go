package payment

import (
	"crypto/rand"
	"fmt"
)

const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomAlphanumeric generates a random alphanumeric string of the
// given length using crypto/rand.
func randomAlphanumeric(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = alphanumericChars[int(buf[i])%len(alphanumericChars)]
	}
	return string(buf), nil
}

// MockGateway is a stand-in payment gateway with no external
// settlement. Order ids and client secrets follow the id shapes real
// gateways use so client integrations exercise realistic values.
type MockGateway struct{}

// NewMockGateway creates a mock gateway.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// CreateOrder opens a mock order for the given amount.
func (g *MockGateway) CreateOrder(amountCents uint32) (Order, error) {
	_ = amountCents // a real gateway registers the amount with the processor
	id, err := randomAlphanumeric(16)
	if err != nil {
		return Order{}, err
	}
	secret, err := randomAlphanumeric(24)
	if err != nil {
		return Order{}, err
	}
	orderID := fmt.Sprintf("order_%s", id)
	return Order{
		OrderID:      orderID,
		ClientSecret: fmt.Sprintf("%s_secret_%s", orderID, secret),
	}, nil
}

// VerifyConfirmation checks the confirmation against the stored order
// id. The check is structural: all fields must be present and the
// order id must match the one issued at intent creation. A real
// implementation verifies an HMAC signature over order and payment ids
// here.
func (g *MockGateway) VerifyConfirmation(orderID string, c Confirmation) bool {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return false
	}
	return c.OrderID == orderID
}
