package models

import (
	"time"

	"gorm.io/gorm"
)

// Production statuses. The workflow progresses linearly from pending to
// completed; on-hold and cancelled are administrative overrides reachable
// from any non-terminal state.
const (
	ProductionStatusPending          = "pending"
	ProductionStatusAssigned         = "assigned"
	ProductionStatusCutting          = "cutting"
	ProductionStatusStitching        = "stitching"
	ProductionStatusEmbroidery       = "embroidery"
	ProductionStatusFinishing        = "finishing"
	ProductionStatusQualityCheck     = "quality-check"
	ProductionStatusReadyForShipment = "ready-for-shipment"
	ProductionStatusCompleted        = "completed"
	ProductionStatusOnHold           = "on-hold"
	ProductionStatusCancelled        = "cancelled"
)

// Queue priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityRush   = "rush"
)

// productionSequence is the intended forward order of the workflow stages
var productionSequence = []string{
	ProductionStatusPending,
	ProductionStatusAssigned,
	ProductionStatusCutting,
	ProductionStatusStitching,
	ProductionStatusEmbroidery,
	ProductionStatusFinishing,
	ProductionStatusQualityCheck,
	ProductionStatusReadyForShipment,
	ProductionStatusCompleted,
}

func productionStageIndex(status string) int {
	for i, s := range productionSequence {
		if s == status {
			return i
		}
	}
	return -1
}

// IsValidProductionStatus reports whether s is a known production status
func IsValidProductionStatus(s string) bool {
	if s == ProductionStatusOnHold || s == ProductionStatusCancelled {
		return true
	}
	return productionStageIndex(s) >= 0
}

// IsTerminalProductionStatus reports whether s is a terminal status
func IsTerminalProductionStatus(s string) bool {
	return s == ProductionStatusCompleted || s == ProductionStatusCancelled
}

// CanTransitionProduction reports whether a queue entry may move from one
// status to another. Forward moves along the workflow are allowed one stage
// at a time; on-hold and cancelled are reachable from any non-terminal state,
// and work resumes from on-hold into any workflow stage.
func CanTransitionProduction(from, to string) bool {
	if from == to {
		return false
	}
	if IsTerminalProductionStatus(from) {
		return false
	}
	if to == ProductionStatusOnHold || to == ProductionStatusCancelled {
		return true
	}
	toIdx := productionStageIndex(to)
	if toIdx < 0 {
		return false
	}
	if from == ProductionStatusOnHold {
		return toIdx > 0 // resume anywhere except back to pending
	}
	return toIdx == productionStageIndex(from)+1
}

// ProductionTimeline holds one optional timestamp per workflow stage
// transition. Entering a stage stamps both the new stage's start and the
// previous stage's completion.
type ProductionTimeline struct {
	AssignedAt          *time.Time `json:"assigned_at,omitempty"`
	CuttingStarted      *time.Time `json:"cutting_started,omitempty"`
	CuttingCompleted    *time.Time `json:"cutting_completed,omitempty"`
	StitchingStarted    *time.Time `json:"stitching_started,omitempty"`
	StitchingCompleted  *time.Time `json:"stitching_completed,omitempty"`
	EmbroideryStarted   *time.Time `json:"embroidery_started,omitempty"`
	EmbroideryCompleted *time.Time `json:"embroidery_completed,omitempty"`
	FinishingStarted    *time.Time `json:"finishing_started,omitempty"`
	FinishingCompleted  *time.Time `json:"finishing_completed,omitempty"`
	QualityCheckPassed  *time.Time `json:"quality_check_passed,omitempty"`
	ReadyForShipmentAt  *time.Time `json:"ready_for_shipment_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// QualityCheckRecord is the quality-check sub-record embedded in a queue entry
type QualityCheckRecord struct {
	CheckedBy string     `json:"checked_by,omitempty"`
	Passed    bool       `gorm:"default:false" json:"passed"`
	Notes     string     `json:"notes,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// ProductionNote is a free-text note on a queue entry's work log
type ProductionNote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	QueueEntryID  uint      `gorm:"not null;index" json:"queue_entry_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	AuthorID      *uint     `gorm:"index" json:"author_id,omitempty"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for the ProductionNote model
func (ProductionNote) TableName() string {
	return "production_notes"
}

// ProductionQueueEntry tracks the manufacturing workflow for one order
type ProductionQueueEntry struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"uniqueIndex;not null" json:"order_id"` // one entry per order
	Order   *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`

	Status   string `gorm:"not null;default:'pending';index" json:"status"`
	Priority string `gorm:"not null;default:'normal'" json:"priority"`

	TailorID             *uint      `gorm:"index" json:"tailor_id,omitempty"`
	Tailor               *Tailor    `gorm:"foreignKey:TailorID" json:"tailor,omitempty"`
	AssignedAt           *time.Time `json:"assigned_at,omitempty"`
	EstimatedCompletion  *time.Time `json:"estimated_completion,omitempty"`
	ActualCompletionDate *time.Time `json:"actual_completion_date,omitempty"`
	RushOrder            bool       `gorm:"not null;default:false" json:"rush_order"`

	Timeline     ProductionTimeline `gorm:"embedded;embeddedPrefix:tl_" json:"timeline"`
	QualityCheck QualityCheckRecord `gorm:"embedded;embeddedPrefix:qc_" json:"quality_check"`
	Notes        []ProductionNote   `gorm:"foreignKey:QueueEntryID;constraint:OnDelete:CASCADE" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ProductionQueueEntry model
func (ProductionQueueEntry) TableName() string {
	return "production_queue"
}

// AdvanceStatus moves the entry to a new workflow status, stamping the
// timeline for the stage being entered and the stage being left. Illegal
// jumps are rejected against the transition table.
func (e *ProductionQueueEntry) AdvanceStatus(newStatus string) error {
	if !IsValidProductionStatus(newStatus) {
		return NewDomainError(ErrCodeValidation, "unknown production status %q", newStatus)
	}
	if !CanTransitionProduction(e.Status, newStatus) {
		return NewDomainError(ErrCodeInvalidStateTransition, "cannot move production from %q to %q", e.Status, newStatus)
	}

	e.Status = newStatus
	now := time.Now()

	switch newStatus {
	case ProductionStatusAssigned:
		e.Timeline.AssignedAt = &now
		e.AssignedAt = &now
	case ProductionStatusCutting:
		e.Timeline.CuttingStarted = &now
	case ProductionStatusStitching:
		e.Timeline.CuttingCompleted = &now
		e.Timeline.StitchingStarted = &now
	case ProductionStatusEmbroidery:
		e.Timeline.StitchingCompleted = &now
		e.Timeline.EmbroideryStarted = &now
	case ProductionStatusFinishing:
		e.Timeline.EmbroideryCompleted = &now
		e.Timeline.FinishingStarted = &now
	case ProductionStatusQualityCheck:
		e.Timeline.FinishingCompleted = &now
	case ProductionStatusReadyForShipment:
		e.Timeline.QualityCheckPassed = &now
		e.Timeline.ReadyForShipmentAt = &now
	case ProductionStatusCompleted:
		e.Timeline.CompletedAt = &now
		e.ActualCompletionDate = &now
	}

	return nil
}

// AssignTailor sets the assignment block and forces the entry into the
// assigned status. Capacity is the tailor's concern: callers must run
// Tailor.AssignOrder first.
func (e *ProductionQueueEntry) AssignTailor(tailorID uint, estimatedCompletion *time.Time) error {
	if IsTerminalProductionStatus(e.Status) {
		return NewDomainError(ErrCodeInvalidStateTransition, "cannot assign a tailor to a %s entry", e.Status)
	}

	now := time.Now()
	e.TailorID = &tailorID
	e.EstimatedCompletion = estimatedCompletion
	e.Status = ProductionStatusAssigned
	e.AssignedAt = &now
	e.Timeline.AssignedAt = &now
	return nil
}

// RecordQualityCheck fills the quality-check sub-record
func (e *ProductionQueueEntry) RecordQualityCheck(checkedBy string, passed bool, notes string) {
	now := time.Now()
	e.QualityCheck = QualityCheckRecord{
		CheckedBy: checkedBy,
		Passed:    passed,
		Notes:     notes,
		CheckedAt: &now,
	}
}
