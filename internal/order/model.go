package order

import "time"

// Order statuses. Transitions are free-form, but a status must always be
// one of these values.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Defaults for optional customer fields left blank by the caller.
const (
	DefaultPaymentMethod = "unspecified"
	DefaultSize          = "unspecified"
)

var statuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ValidStatus reports whether s is a recognized order status.
func ValidStatus(s string) bool { return statuses[s] }

type Order struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customer_name"`
	CustomerAddr  string    `json:"customer_address"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	Size          string    `json:"size"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Price snapshot taken at order time; NUMERIC -> string to avoid
	// rounding errors. Immutable once written.
	Price string `json:"price"`
}
