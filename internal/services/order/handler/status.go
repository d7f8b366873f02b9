package handler

import (
	"strings"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
)

// Orders only move forward through the fulfilment pipeline, possibly skipping
// steps. CANCELLED and REFUNDED may be entered from anything before DELIVERED.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending: {
		models.OrderConfirmed, models.OrderProcessing, models.OrderShipped, models.OrderDelivered,
		models.OrderCancelled, models.OrderRefunded,
	},
	models.OrderConfirmed: {
		models.OrderProcessing, models.OrderShipped, models.OrderDelivered,
		models.OrderCancelled, models.OrderRefunded,
	},
	models.OrderProcessing: {
		models.OrderShipped, models.OrderDelivered,
		models.OrderCancelled, models.OrderRefunded,
	},
	models.OrderShipped: {
		models.OrderDelivered,
		models.OrderCancelled, models.OrderRefunded,
	},
	models.OrderDelivered: nil,
	models.OrderCancelled: nil,
	models.OrderRefunded:  nil,
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending:  {models.PaymentPaid, models.PaymentFailed},
	models.PaymentFailed:   {models.PaymentPending, models.PaymentPaid},
	models.PaymentPaid:     {models.PaymentRefunded},
	models.PaymentRefunded: nil,
}

func ParseOrderStatus(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderTransitions[status]; !ok {
		return "", apperr.Validation("invalid order status %q", s)
	}
	return status, nil
}

func ParsePaymentStatus(s string) (models.PaymentStatus, error) {
	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := paymentTransitions[status]; !ok {
		return "", apperr.Validation("invalid payment status %q", s)
	}
	return status, nil
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status models.OrderStatus) bool {
	return len(orderTransitions[status]) == 0
}

func invalidTransition(from, to string) error {
	return apperr.Conflict(apperr.CodeInvalidStatusTransition, "Cannot change status from %s to %s", from, to)
}
