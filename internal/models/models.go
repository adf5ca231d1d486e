package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment method / type values stored on orders and payout snapshots.
const (
	PaymentCOD    = "COD"
	PaymentOnline = "ONLINE"

	OnlineFull    = "FULL"
	OnlineAdvance = "ADVANCE"
)

// Order status values. 'cancelled' is terminal; 'returned' is only
// reachable from 'completed'.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusReturned  = "returned"
)

// Payment status values.
const (
	PayPending  = "pending"
	PayPaid     = "paid"
	PayRefunded = "refunded"
)

// Profile - The customer account. Coins are a loyalty balance accumulated
// elsewhere; this service only reads them for coupon eligibility.
type Profile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:120" json:"email"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Coins        int       `json:"coins"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Package - A decoration package in the catalog
type Package struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Category    string          `json:"category"` // 'Stall', 'Decor', ...
	ImageURL    string          `json:"image_url"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CartItem - A package placed in a user's cart. Name and price are copied
// from the package at add time so the cart survives catalog edits.
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	PackageID uint            `json:"package_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Qty       int             `json:"qty"`
	ImageURL  string          `json:"image_url"`
	CreatedAt time.Time       `json:"created_at"`
}

// PayoutDetails - Event/delivery info captured on the payout screen.
// Immutable snapshot; one row per checkout attempt, the newest one wins.
type PayoutDetails struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	EventDate      string    `json:"event_date"`
	EventTime      string    `json:"event_time"`
	EventPlace     string    `json:"event_place"`
	Address        string    `json:"address"`
	Pincode        string    `json:"pincode"`
	NearbyLocation string    `json:"nearby_location"`
	PaymentMethod  string    `json:"payment_method"` // COD | ONLINE
	OnlineType     string    `json:"online_type"`    // FULL | ADVANCE
	CreatedAt      time.Time `json:"created_at"`
}

// Order - The booking. Never hard-deleted; cancel/return flip status only.
type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	PayoutID          uuid.UUID       `gorm:"type:uuid" json:"payout_id"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Total             decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`
	DiscountApplied   bool            `json:"discount_applied"`
	DiscountAmount    decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	FinalTotal        decimal.Decimal `gorm:"type:numeric(12,2)" json:"final_total"`
	PaymentMethod     string          `json:"payment_method"` // COD | ONLINE
	PaymentType       string          `json:"payment_type"`   // FULL | ADVANCE (online only)
	PaymentStatus     string          `json:"payment_status"` // pending | paid | refunded
	Status            string          `json:"status"`
	// unique only where set: COD rows leave it empty
	RazorpayOrderID   string          `gorm:"index:idx_orders_razorpay_order_id,unique,where:razorpay_order_id <> ''" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string          `json:"razorpay_payment_id,omitempty"`
	RefundID          string          `json:"refund_id,omitempty"`
	RefundStatus      string          `json:"refund_status,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderItem - Snapshot of a cart line at checkout time
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	PackageID uint            `json:"package_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Qty       int             `json:"qty"`
}

// ContactMessage - Contact form submission (also mailed to the shop inbox)
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
