package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system (customer, admin, or tailor account)
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Auth0ID     string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name        string         `gorm:"not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string         `json:"phone"`
	Role        string         `gorm:"not null;default:'customer'" json:"role"` // "customer", "admin", or "tailor"
	TotalOrders int            `gorm:"not null;default:0" json:"total_orders"`  // lifetime order count, bumped on order creation
	TotalSpent  float64        `gorm:"not null;default:0" json:"total_spent"`   // lifetime spend, bumped on order creation
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// RecordOrder adds a placed order to the customer's lifetime counters
func (u *User) RecordOrder(total float64) {
	u.TotalOrders++
	u.TotalSpent += total
}
