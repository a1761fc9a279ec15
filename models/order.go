package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. An order starts at pending-payment and moves forward through
// payment verification, production, and delivery; cancelled is reachable until
// the order is delivered.
const (
	OrderStatusPendingPayment  = "pending-payment"
	OrderStatusPaymentVerified = "payment-verified"
	OrderStatusInProgress      = "in-progress"
	OrderStatusReady           = "ready"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
)

// RushMultiplier is applied to an item's subtotal when it is flagged for
// expedited production.
const RushMultiplier = 1.25

// OrderStatuses lists every valid order status
var OrderStatuses = []string{
	OrderStatusPendingPayment,
	OrderStatusPaymentVerified,
	OrderStatusInProgress,
	OrderStatusReady,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AddOn is an extra charge attached to a custom order item (e.g. monogram,
// contrast lining, hand-finished buttonholes)
type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CustomDetails holds the made-to-measure block of a custom order item.
// Stored as a JSON column on the item row.
type CustomDetails struct {
	Measurements   map[string]float64 `json:"measurements,omitempty"` // e.g. "chest": 102.5 (cm)
	FabricSource   string             `json:"fabric_source,omitempty"`
	AddOns         []AddOn            `json:"add_ons,omitempty"`
	RushOrder      bool               `json:"rush_order"`
	DesignImageKey string             `json:"design_image_key,omitempty"` // S3 key of the reference design image
	Instructions   string             `json:"instructions,omitempty"`
}

// OrderItem represents one line of an order with a snapshot of the product
// at order time
type OrderItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderID       uint           `gorm:"not null;index" json:"order_id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	ProductTitle  string         `gorm:"not null" json:"product_title"`
	ProductImage  string         `json:"product_image"`
	Fabric        string         `json:"fabric"`
	IsCustom      bool           `gorm:"not null;default:false" json:"is_custom"`
	CustomDetails *CustomDetails `gorm:"serializer:json" json:"custom_details,omitempty"` // set only when IsCustom
	UnitPrice     float64        `gorm:"not null;check:unit_price >= 0" json:"unit_price"`
	Quantity      int            `gorm:"not null;check:quantity > 0" json:"quantity"`
	Subtotal      float64        `gorm:"not null" json:"subtotal"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// ComputeSubtotal recalculates and stores the item subtotal:
// unit price times quantity plus add-on charges, with the rush multiplier
// applied on top for rush items.
func (i *OrderItem) ComputeSubtotal() float64 {
	subtotal := i.UnitPrice * float64(i.Quantity)
	if i.CustomDetails != nil {
		for _, addOn := range i.CustomDetails.AddOns {
			subtotal += addOn.Price
		}
		if i.CustomDetails.RushOrder {
			subtotal *= RushMultiplier
		}
	}
	i.Subtotal = subtotal
	return subtotal
}

// StatusHistoryEntry records one status an order has held. Entries are
// append-only: nothing in the API removes or reorders them.
type StatusHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    string    `gorm:"not null" json:"status"`
	Note      string    `json:"note,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the StatusHistoryEntry model
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// PaymentRecord is the payment sub-record embedded in an order
type PaymentRecord struct {
	Method     string     `json:"method"` // e.g. "bank-transfer", "card", "cash-on-delivery"
	Reference  string     `json:"reference,omitempty"`
	Verified   bool       `gorm:"default:false" json:"verified"`
	VerifiedBy string     `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// CancellationRecord captures who cancelled an order and why. RequestedAt is
// when the cancellation was asked for, CancelledAt when it took effect; the
// synchronous API stamps both together.
type CancellationRecord struct {
	CancelledBy string     `json:"cancelled_by,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// ShippingAddress is the address snapshot taken at order time
type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is the aggregate root for a customer order. It owns its line items
// and status history; customer and products are referenced by ID only.
type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OrderNumber   string `gorm:"uniqueIndex;not null" json:"order_number"` // AMR-YEAR-NNNN, assigned at creation
	CustomerID    uint   `gorm:"not null;index" json:"customer_id"`
	Customer      *User  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerEmail string `gorm:"not null" json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Payment         PaymentRecord   `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	Subtotal       float64 `gorm:"not null;default:0" json:"subtotal"`
	ShippingCharge float64 `gorm:"not null;default:0" json:"shipping_charge"`
	Discount       float64 `gorm:"not null;default:0" json:"discount"`
	Tax            float64 `gorm:"not null;default:0" json:"tax"`
	Total          float64 `gorm:"not null;default:0" json:"total"`

	Status        string               `gorm:"not null;default:'pending-payment';index" json:"status"`
	StatusHistory []StatusHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history"`
	DeliveredAt   *time.Time           `json:"delivered_at,omitempty"`
	Cancellation  CancellationRecord   `gorm:"embedded;embeddedPrefix:cancel_" json:"cancellation,omitempty"`
	AdminNotes    string               `json:"admin_notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // orders are never hard-deleted
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// RecomputeTotals recalculates every item subtotal and the order's pricing
// breakdown. Total is floored at zero so an oversized discount cannot produce
// a negative charge. Idempotent; safe to run on every save.
func (o *Order) RecomputeTotals() {
	subtotal := 0.0
	for idx := range o.Items {
		subtotal += o.Items[idx].ComputeSubtotal()
	}
	o.Subtotal = subtotal

	total := o.Subtotal + o.ShippingCharge + o.Tax - o.Discount
	if total < 0 {
		total = 0
	}
	o.Total = total
}

// BeforeSave recomputes the pricing breakdown so no pricing-affecting change
// can be persisted with stale totals
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if len(o.Items) > 0 {
		o.RecomputeTotals()
	}
	return nil
}

// UpdateStatus sets the order status and appends a history entry. A repeat of
// the current status is a no-op for history: the append is guarded by
// comparing against the most recent entry only. Entering delivered stamps
// DeliveredAt once.
func (o *Order) UpdateStatus(newStatus, note, actor string) error {
	if !IsValidOrderStatus(newStatus) {
		return NewDomainError(ErrCodeValidation, "unknown order status %q", newStatus)
	}

	o.Status = newStatus

	if last := o.lastHistoryEntry(); last == nil || last.Status != newStatus {
		o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
			OrderID:   o.ID,
			Status:    newStatus,
			Note:      note,
			ChangedBy: actor,
			CreatedAt: time.Now(),
		})
	}

	if newStatus == OrderStatusDelivered && o.DeliveredAt == nil {
		now := time.Now()
		o.DeliveredAt = &now
	}

	return nil
}

func (o *Order) lastHistoryEntry() *StatusHistoryEntry {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	return &o.StatusHistory[len(o.StatusHistory)-1]
}

// VerifyPayment marks the payment sub-record verified and, when the order is
// still awaiting payment, advances it to payment-verified
func (o *Order) VerifyPayment(verifiedBy, notes string) error {
	now := time.Now()
	o.Payment.Verified = true
	o.Payment.VerifiedBy = verifiedBy
	o.Payment.VerifiedAt = &now
	if notes != "" {
		o.Payment.Notes = notes
	}

	if o.Status == OrderStatusPendingPayment {
		return o.UpdateStatus(OrderStatusPaymentVerified, "Payment verified", verifiedBy)
	}
	return nil
}

// CancelOrder cancels the order unless it has already been delivered or
// cancelled
func (o *Order) CancelOrder(reason, cancelledBy string) error {
	if o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled {
		return NewDomainError(ErrCodeInvalidStateTransition, "cannot cancel an order with status %q", o.Status)
	}

	now := time.Now()
	o.Cancellation = CancellationRecord{
		CancelledBy: cancelledBy,
		Reason:      reason,
		RequestedAt: &now,
		CancelledAt: &now,
	}
	return o.UpdateStatus(OrderStatusCancelled, reason, cancelledBy)
}

// CanCustomerCancel reports whether the customer can still cancel the order
// themselves. Once production starts, cancellation needs an admin.
func (o *Order) CanCustomerCancel() bool {
	return o.Status == OrderStatusPendingPayment || o.Status == OrderStatusPaymentVerified
}
