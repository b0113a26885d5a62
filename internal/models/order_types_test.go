package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusDelivered},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !CanCancel(OrderStatusPending) {
		t.Error("pending orders should be cancellable")
	}
	if !CanCancel(OrderStatusProcessing) {
		t.Error("processing orders should be cancellable")
	}
	if CanCancel(OrderStatusShipped) {
		t.Error("shipped orders must not be cancellable")
	}
	if CanCancel(OrderStatusDelivered) {
		t.Error("delivered orders must not be cancellable")
	}
	if CanCancel(OrderStatusCancelled) {
		t.Error("cancelled orders must not be cancellable again")
	}
	if CanCancel("unknown") {
		t.Error("unknown status must not be cancellable")
	}
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentCreditCard, PaymentDebitCard, PaymentPaypal, PaymentCashOnDelivery} {
		if !IsValidPaymentMethod(m) {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if IsValidPaymentMethod("bank_transfer") {
		t.Error("unknown payment method accepted")
	}
	if IsValidPaymentMethod("") {
		t.Error("empty payment method accepted")
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: 12.50}
	if got := item.Subtotal(); got != 37.5 {
		t.Errorf("expected subtotal 37.5, got %v", got)
	}
}

func TestOrderIsCompleted(t *testing.T) {
	o := Order{Status: OrderStatusDelivered}
	if !o.IsCompleted() {
		t.Error("delivered order should be completed")
	}
	o.Status = OrderStatusShipped
	if o.IsCompleted() {
		t.Error("shipped order should not be completed")
	}
}
