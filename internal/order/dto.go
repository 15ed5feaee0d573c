package order

// PlaceOrderItem is one requested line in a place-order payload.
type PlaceOrderItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"  example:"2"`
	Price     string `json:"price,omitempty" example:"90.00"`
}

// PlaceOrderRequest is the payload for creating an order.
type PlaceOrderRequest struct {
	Name          string           `json:"name" example:"Mei Lin"`
	Address       string           `json:"address" example:"12 Alley 3, Lane 50, Taipei"`
	Email         string           `json:"email,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	PaymentMethod string           `json:"payment,omitempty" example:"transfer"`
	Size          string           `json:"size,omitempty"`
	Items         []PlaceOrderItem `json:"items"`
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" example:"shipped"`
}
