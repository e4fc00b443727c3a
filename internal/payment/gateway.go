// Package payment defines the payment gateway capability consumed by
// the booking core and a mock implementation with the same contract
// surface as a real gateway.
package payment

// Order is what the gateway hands back when a checkout is opened. The
// client secret is returned to the client for the payment flow; the
// order id binds the later confirmation to the payment.
type Order struct {
	OrderID      string
	ClientSecret string
}

// Confirmation carries the fields a client submits after completing
// the gateway's payment flow.
type Confirmation struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Gateway opens orders and verifies confirmations. A real gateway
// implementation performs cryptographic signature verification in
// VerifyConfirmation; the mock performs a structural stand-in with the
// same contract, so swapping implementations never touches the intent
// or finalization services.
type Gateway interface {
	CreateOrder(amountCents uint32) (Order, error)
	VerifyConfirmation(orderID string, c Confirmation) bool
}
