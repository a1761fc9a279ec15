package models

import (
	"time"

	"gorm.io/gorm"
)

// Tailor represents a member of the production team with a daily work
// capacity. CurrentOrders is the live count of queue entries assigned to
// them; assignment and completion move the counter in opposite directions.
type Tailor struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Specialty       string         `json:"specialty"` // e.g. "suits", "embroidery"
	MaxOrdersPerDay int            `gorm:"not null;default:5" json:"max_orders_per_day"`
	CurrentOrders   int            `gorm:"not null;default:0" json:"current_orders"`
	CompletedOrders int            `gorm:"not null;default:0" json:"completed_orders"`
	TotalOrders     int            `gorm:"not null;default:0" json:"total_orders"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Tailor model
func (Tailor) TableName() string {
	return "tailors"
}

// AssignOrder reserves one slot of the tailor's capacity. Fails when the
// tailor is already at their daily limit.
func (t *Tailor) AssignOrder() error {
	if t.CurrentOrders >= t.MaxOrdersPerDay {
		return NewDomainError(ErrCodeCapacityExceeded, "tailor %q is at capacity (%d/%d orders)", t.Name, t.CurrentOrders, t.MaxOrdersPerDay)
	}
	t.CurrentOrders++
	return nil
}

// CompleteOrder releases one capacity slot and credits the tailor's lifetime
// counters. The live count is floored at zero.
func (t *Tailor) CompleteOrder() {
	if t.CurrentOrders > 0 {
		t.CurrentOrders--
	}
	t.CompletedOrders++
	t.TotalOrders++
}

// ReleaseOrder returns a reserved capacity slot without a completion credit.
// Used when an assignment moves to another tailor or the entry is cancelled.
func (t *Tailor) ReleaseOrder() {
	if t.CurrentOrders > 0 {
		t.CurrentOrders--
	}
}
