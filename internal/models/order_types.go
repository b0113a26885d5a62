package models

import "time"

// Order statuses. An order is created as 'pending' and only ever moves
// forward through this set; 'delivered' and 'cancelled' are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Accepted payment methods. Payment itself is out of scope; the method is
// recorded on the order and validated against this set.
const (
	PaymentCreditCard     = "credit_card"
	PaymentDebitCard      = "debit_card"
	PaymentPaypal         = "paypal"
	PaymentCashOnDelivery = "cash_on_delivery"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

var paymentMethods = map[string]bool{
	PaymentCreditCard:     true,
	PaymentDebitCard:      true,
	PaymentPaypal:         true,
	PaymentCashOnDelivery: true,
}

// statusTransitions is the full transition table. Cancellation through the
// dedicated cancel endpoint has its own rule (CanCancel) because it also
// restores stock.
var statusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// IsValidOrderStatus reports whether s is one of the five known statuses.
func IsValidOrderStatus(s string) bool {
	return orderStatuses[s]
}

// IsValidPaymentMethod reports whether m is an accepted payment method.
func IsValidPaymentMethod(m string) bool {
	return paymentMethods[m]
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order in the given status may still be
// cancelled. Only pending and processing orders can; the SQL guard in the
// checkout store enforces the same set.
func CanCancel(status string) bool {
	return status == OrderStatusPending || status == OrderStatusProcessing
}

// Order is the model for the 'orders' table. TotalPrice is computed once at
// placement time and never recalculated.
type Order struct {
	ID              int64   `json:"id" db:"id"`
	UserID          int64   `json:"userId" db:"user_id"`
	TotalPrice      float64 `json:"totalPrice" db:"total_price"`
	Status          string  `json:"status" db:"status"`
	PaymentMethod   string  `json:"paymentMethod" db:"payment_method"`
	ShippingAddress string  `json:"shippingAddress" db:"shipping_address"`
	PhoneNumber     string  `json:"phoneNumber" db:"phone_number"`
	Notes           string  `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated manually on detail endpoints.
	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// IsCompleted reports whether the order reached its final delivered state.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusDelivered
}

// OrderItem is the model for the 'order_items' table. Price is the product
// price frozen at the moment the order was placed.
type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"orderId" db:"order_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"`

	// Joined for display.
	ProductName  string  `json:"productName,omitempty" db:"-"`
	ProductImage *string `json:"productImage,omitempty" db:"-"`
}

// Subtotal is quantity times the frozen price.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}
