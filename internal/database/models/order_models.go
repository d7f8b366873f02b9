package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentNetBanking     PaymentMethod = "NET_BANKING"
	PaymentWallet         PaymentMethod = "WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCreditCard, PaymentDebitCard, PaymentUPI, PaymentNetBanking, PaymentWallet:
		return true
	}
	return false
}

type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null" json:"orderNumber"`
	UserID      *int64 `gorm:"index" json:"userId"`

	CustomerName string  `gorm:"size:255;not null" json:"customerName"`
	Phone        string  `gorm:"size:20;index;not null" json:"phone"`
	Email        *string `gorm:"size:255" json:"email,omitempty"`
	Address      string  `gorm:"type:text" json:"address"`
	City         *string `gorm:"size:100" json:"city,omitempty"`
	State        *string `gorm:"size:100" json:"state,omitempty"`
	PostalCode   *string `gorm:"size:20" json:"postalCode,omitempty"`
	Country      string  `gorm:"size:100;not null;default:India" json:"country"`

	ItemTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"itemTotal"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deliveryFee"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	GrandTotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grandTotal"`

	Status        OrderStatus   `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:PENDING" json:"paymentStatus"`
	PaymentMethod PaymentMethod `gorm:"size:30;not null;default:CASH_ON_DELIVERY" json:"paymentMethod"`
	Notes         *string       `gorm:"type:text" json:"notes,omitempty"`
	CouponID      *int64        `json:"couponId,omitempty"`

	EstimatedDelivery time.Time  `json:"estimatedDelivery"`
	ShippedDate       *time.Time `json:"shippedDate,omitempty"`
	DeliveredDate     *time.Time `json:"deliveredDate,omitempty"`
	CancelledDate     *time.Time `json:"cancelledDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"orderItems,omitempty"`
}

// OrderItem keeps a name and price snapshot so catalog edits do not rewrite history.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"index;not null" json:"orderId"`
	ProductID   int64           `gorm:"index;not null" json:"productId"`
	ProductName string          `gorm:"size:255;not null" json:"productName"`
	Quantity    int32           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	IsFreeItem  bool            `gorm:"not null;default:false" json:"isFreeItem"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RecomputeTotal sets TotalPrice = Quantity x UnitPrice.
func (i *OrderItem) RecomputeTotal() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}
