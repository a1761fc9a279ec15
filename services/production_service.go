package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amara-atelier/atelier-orders-api/models"
)

// ProductionService owns the production queue workflow: enqueueing orders,
// advancing the manufacturing stages, and tailor assignment.
type ProductionService struct {
	db *gorm.DB
}

// NewProductionService creates a ProductionService backed by the given database
func NewProductionService(db *gorm.DB) *ProductionService {
	return &ProductionService{db: db}
}

// EnqueueOrder creates the production queue entry for an order entering
// production and moves the order to in-progress. The unique index on
// order_id keeps the relationship one-to-one.
func (s *ProductionService) EnqueueOrder(orderID uint, priority string, rushOrder bool) (*models.ProductionQueueEntry, error) {
	if priority == "" {
		priority = models.PriorityNormal
	}
	if rushOrder && priority == models.PriorityNormal {
		priority = models.PriorityRush
	}

	var entry models.ProductionQueueEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("StatusHistory").First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return models.NewDomainError(models.ErrCodeInvalidStateTransition, "cannot queue a cancelled order for production")
		}

		entry = models.ProductionQueueEntry{
			OrderID:   order.ID,
			Status:    models.ProductionStatusPending,
			Priority:  priority,
			RushOrder: rushOrder,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewDomainError(models.ErrCodeInvalidStateTransition, "order %s is already in the production queue", order.OrderNumber)
			}
			return err
		}

		if err := order.UpdateStatus(models.OrderStatusInProgress, "Entered production queue", ""); err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AdvanceStatus moves a queue entry to a new workflow stage. Completing an
// entry also marks the paired order ready for pickup/shipment and releases
// the assigned tailor's capacity slot, all in one transaction.
func (s *ProductionService) AdvanceStatus(entryID uint, newStatus, actor string) (*models.ProductionQueueEntry, error) {
	var entry models.ProductionQueueEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Notes").First(&entry, entryID).Error; err != nil {
			return err
		}

		if err := entry.AdvanceStatus(newStatus); err != nil {
			return err
		}

		if actor != "" {
			entry.Notes = append(entry.Notes, models.ProductionNote{
				QueueEntryID: entry.ID,
				Text:         fmt.Sprintf("Status changed to %s by %s", newStatus, actor),
				CreatedAt:    time.Now(),
			})
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&entry).Error; err != nil {
			return err
		}

		if newStatus == models.ProductionStatusCompleted {
			if err := s.finishProduction(tx, &entry, actor); err != nil {
				return err
			}
		}

		// Cancelling an assigned entry hands the slot back without a
		// completed-orders credit.
		if newStatus == models.ProductionStatusCancelled && entry.TailorID != nil {
			if err := s.releaseTailor(tx, *entry.TailorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// finishProduction applies the completed-entry side effects: the paired order
// becomes ready and the tailor gets their capacity slot back plus a completed
// order credit.
func (s *ProductionService) finishProduction(tx *gorm.DB, entry *models.ProductionQueueEntry, actor string) error {
	var order models.Order
	if err := tx.Preload("StatusHistory").First(&order, entry.OrderID).Error; err != nil {
		return err
	}
	if err := order.UpdateStatus(models.OrderStatusReady, "Production completed", actor); err != nil {
		return err
	}
	if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&order).Error; err != nil {
		return err
	}

	if entry.TailorID != nil {
		var tailor models.Tailor
		if err := tx.First(&tailor, *entry.TailorID).Error; err != nil {
			return err
		}
		tailor.CompleteOrder()
		if err := tx.Save(&tailor).Error; err != nil {
			return err
		}
	}
	return nil
}

// releaseTailor hands one capacity slot back to a tailor inside the caller's
// transaction.
func (s *ProductionService) releaseTailor(tx *gorm.DB, tailorID uint) error {
	var tailor models.Tailor
	if err := tx.First(&tailor, tailorID).Error; err != nil {
		return err
	}
	tailor.ReleaseOrder()
	return tx.Save(&tailor).Error
}

// AssignToTailor reserves the tailor's capacity and sets the entry's
// assignment block as one transaction, so a capacity failure leaves the entry
// untouched.
func (s *ProductionService) AssignToTailor(entryID, tailorID uint, estimatedCompletion *time.Time, notes string) (*models.ProductionQueueEntry, error) {
	var entry models.ProductionQueueEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Notes").First(&entry, entryID).Error; err != nil {
			return err
		}

		// Moving the assignment releases the previous tailor's slot first,
		// so the ledger matches the queue after a hand-off.
		if entry.TailorID != nil {
			if err := s.releaseTailor(tx, *entry.TailorID); err != nil {
				return err
			}
		}

		var tailor models.Tailor
		if err := tx.First(&tailor, tailorID).Error; err != nil {
			return err
		}
		if !tailor.IsActive {
			return models.NewDomainError(models.ErrCodeValidation, "tailor %q is not active", tailor.Name)
		}
		if err := tailor.AssignOrder(); err != nil {
			return err
		}
		if err := tx.Save(&tailor).Error; err != nil {
			return err
		}

		if err := entry.AssignTailor(tailor.ID, estimatedCompletion); err != nil {
			return err
		}
		if notes != "" {
			entry.Notes = append(entry.Notes, models.ProductionNote{
				QueueEntryID: entry.ID,
				Text:         notes,
				CreatedAt:    time.Now(),
			})
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkStatusResult reports the outcome of one entry in a bulk update
type BulkStatusResult struct {
	EntryID uint   `json:"entry_id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// BulkUpdateStatus advances several entries to the same status. Failures are
// reported per entry and do not abort the rest of the batch.
func (s *ProductionService) BulkUpdateStatus(entryIDs []uint, newStatus, actor string) []BulkStatusResult {
	results := make([]BulkStatusResult, 0, len(entryIDs))
	for _, id := range entryIDs {
		_, err := s.AdvanceStatus(id, newStatus, actor)
		result := BulkStatusResult{EntryID: id, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// AddNote appends a free-text note to a queue entry's work log
func (s *ProductionService) AddNote(entryID uint, text string, authorID *uint) (*models.ProductionNote, error) {
	var entry models.ProductionQueueEntry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		return nil, err
	}

	note := models.ProductionNote{
		QueueEntryID: entry.ID,
		Text:         text,
		AuthorID:     authorID,
	}
	if err := s.db.Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// GetEntry loads a queue entry with its notes and assigned tailor
func (s *ProductionService) GetEntry(entryID uint) (*models.ProductionQueueEntry, error) {
	var entry models.ProductionQueueEntry
	err := s.db.
		Preload("Notes").
		Preload("Tailor").
		First(&entry, entryID).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntryByOrder loads the queue entry paired with an order
func (s *ProductionService) GetEntryByOrder(orderID uint) (*models.ProductionQueueEntry, error) {
	var entry models.ProductionQueueEntry
	err := s.db.
		Preload("Notes").
		Preload("Tailor").
		Where("order_id = ?", orderID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns queue entries, optionally filtered by status, rush
// entries first
func (s *ProductionService) ListEntries(status string) ([]models.ProductionQueueEntry, error) {
	query := s.db.Preload("Tailor").Order("rush_order DESC, created_at ASC")
	if status != "" {
		if !models.IsValidProductionStatus(status) {
			return nil, models.NewDomainError(models.ErrCodeValidation, "unknown production status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var entries []models.ProductionQueueEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
