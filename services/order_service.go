package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amara-atelier/atelier-orders-api/models"
)

// OrderNumberPrefix is the leading segment of every order number
const OrderNumberPrefix = "AMR"

// OrderItemInput describes one requested line item
type OrderItemInput struct {
	ProductID     uint                  `json:"product_id" binding:"required"`
	Quantity      int                   `json:"quantity" binding:"required,gt=0"`
	CustomDetails *models.CustomDetails `json:"custom_details,omitempty"`
}

// CreateOrderInput is everything needed to place an order
type CreateOrderInput struct {
	CustomerID      uint
	Items           []OrderItemInput
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	ShippingCharge  float64
	Discount        float64
	Tax             float64
}

// OrderService owns order creation and the administrative order operations.
// All cross-entity writes go through a single transaction.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an OrderService backed by the given database
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// NextOrderNumber assigns the next sequential order number for the given
// year by scanning the highest existing suffix under the year's prefix.
// Format: AMR-YEAR-NNNN, starting at 0001 for a fresh year.
func (s *OrderService) NextOrderNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", OrderNumberPrefix, year)

	// The prefix is fixed-width, so ordering by length first keeps the scan
	// numeric once the suffix grows past four digits (10000 vs 9999).
	var last models.Order
	err := tx.Unscoped().
		Where("order_number LIKE ?", prefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Sprintf("%s%04d", prefix, 1), nil
		}
		return "", err
	}

	suffix := strings.TrimPrefix(last.OrderNumber, prefix)
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return "", fmt.Errorf("malformed order number %q: %w", last.OrderNumber, err)
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

// CreateOrder places an order. The order insert, the stock decrements, the
// product purchase counters, and the customer's lifetime counters commit or
// roll back as one unit; a failure in any side effect leaves no order behind.
//
// The scan-and-increment numbering can race with a concurrent create in the
// same year; the unique index on order_number catches the collision and the
// whole creation is retried once with a fresh number.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, models.NewDomainError(models.ErrCodeValidation, "an order needs at least one item")
	}
	if input.PaymentMethod == "" {
		return nil, models.NewDomainError(models.ErrCodeValidation, "payment method is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, models.NewDomainError(models.ErrCodeValidation, "item quantity must be at least 1")
		}
	}

	order, err := s.createOrderOnce(input)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the order-number race; rescan and retry once.
		order, err = s.createOrderOnce(input)
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewDomainError(models.ErrCodeDuplicateOrderNumber, "could not assign a unique order number")
		}
	}
	return order, err
}

func (s *OrderService) createOrderOnce(input CreateOrderInput) (*models.Order, error) {
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.User
		if err := tx.First(&customer, input.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewDomainError(models.ErrCodeValidation, "customer %d not found", input.CustomerID)
			}
			return err
		}

		orderNumber, err := s.NextOrderNumber(tx, time.Now().Year())
		if err != nil {
			return err
		}

		o := models.Order{
			OrderNumber:     orderNumber,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerEmail:   customer.Email,
			CustomerPhone:   customer.Phone,
			ShippingAddress: input.ShippingAddress,
			Payment: models.PaymentRecord{
				Method:    input.PaymentMethod,
				Reference: uuid.NewString(),
			},
			ShippingCharge: input.ShippingCharge,
			Discount:       input.Discount,
			Tax:            input.Tax,
			Status:         models.OrderStatusPendingPayment,
		}

		for _, itemInput := range input.Items {
			var product models.Product
			if err := tx.First(&product, itemInput.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewDomainError(models.ErrCodeValidation, "product %d not found", itemInput.ProductID)
				}
				return err
			}

			isCustom := itemInput.CustomDetails != nil
			if isCustom {
				product.RecordCustomPurchase(itemInput.Quantity)
			} else {
				if err := product.ReserveStock(itemInput.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			item := models.OrderItem{
				ProductID:     product.ID,
				ProductTitle:  product.Title,
				ProductImage:  product.Image,
				Fabric:        product.Fabric,
				IsCustom:      isCustom,
				CustomDetails: itemInput.CustomDetails,
				UnitPrice:     product.Price,
				Quantity:      itemInput.Quantity,
			}
			item.ComputeSubtotal()
			o.Items = append(o.Items, item)
		}

		o.RecomputeTotals()
		o.StatusHistory = append(o.StatusHistory, models.StatusHistoryEntry{
			Status:    models.OrderStatusPendingPayment,
			Note:      "Order placed",
			CreatedAt: time.Now(),
		})

		if err := tx.Create(&o).Error; err != nil {
			return err
		}

		customer.RecordOrder(o.Total)
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus applies a status change to an order and persists the appended
// history entry
func (s *OrderService) UpdateStatus(orderID uint, newStatus, note, actor string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := order.UpdateStatus(newStatus, note, actor); err != nil {
		return nil, err
	}
	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyPayment marks an order's payment verified and persists the chained
// status change
func (s *OrderService) VerifyPayment(orderID uint, verifiedBy, notes string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := order.VerifyPayment(verifiedBy, notes); err != nil {
		return nil, err
	}
	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels an order, enforcing the delivered/cancelled guard
func (s *OrderService) CancelOrder(orderID uint, reason, cancelledBy string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := order.CancelOrder(reason, cancelledBy); err != nil {
		return nil, err
	}
	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads an order with its items and status history
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.id ASC")
		}).
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
