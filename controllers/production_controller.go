package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/middleware"
	"github.com/amara-atelier/atelier-orders-api/services"
)

// EnqueueOrderRequest represents the request body for adding an order to the
// production queue
type EnqueueOrderRequest struct {
	OrderID   uint   `json:"order_id" binding:"required"`
	Priority  string `json:"priority" binding:"omitempty,oneof=low normal high rush"`
	RushOrder bool   `json:"rush_order"`
}

// AdvanceProductionRequest represents the request body for a stage change
type AdvanceProductionRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignTailorRequest represents the request body for tailor assignment
type AssignTailorRequest struct {
	TailorID            uint       `json:"tailor_id" binding:"required"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
	Notes               string     `json:"notes"`
}

// BulkProductionStatusRequest represents the request body for a bulk stage change
type BulkProductionStatusRequest struct {
	EntryIDs []uint `json:"entry_ids" binding:"required,min=1"`
	Status   string `json:"status" binding:"required"`
}

// AddProductionNoteRequest represents the request body for adding a work note
type AddProductionNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// EnqueueOrder handles POST /api/v1/production - puts an order into the
// production queue (admin only)
func EnqueueOrder(c *gin.Context) {
	var req EnqueueOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	svc := services.NewProductionService(config.GetDB())
	entry, err := svc.EnqueueOrder(req.OrderID, req.Priority, req.RushOrder)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}

// ListProduction handles GET /api/v1/production - lists queue entries, rush
// first, optionally filtered by ?status=
func ListProduction(c *gin.Context) {
	svc := services.NewProductionService(config.GetDB())
	entries, err := svc.ListEntries(c.Query("status"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// GetProductionEntry handles GET /api/v1/production/:id
func GetProductionEntry(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := services.NewProductionService(config.GetDB())
	entry, err := svc.GetEntry(entryID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// AdvanceProductionStatus handles PATCH /api/v1/production/:id/status
func AdvanceProductionStatus(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AdvanceProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	svc := services.NewProductionService(config.GetDB())
	entry, err := svc.AdvanceStatus(entryID, req.Status, actorName(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// AssignTailor handles POST /api/v1/production/:id/assign
func AssignTailor(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AssignTailorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	svc := services.NewProductionService(config.GetDB())
	entry, err := svc.AssignToTailor(entryID, req.TailorID, req.EstimatedCompletion, req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// BulkUpdateProductionStatus handles PATCH /api/v1/production/bulk-status
func BulkUpdateProductionStatus(c *gin.Context) {
	var req BulkProductionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	svc := services.NewProductionService(config.GetDB())
	results := svc.BulkUpdateStatus(req.EntryIDs, req.Status, actorName(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

// AddProductionNote handles POST /api/v1/production/:id/notes
func AddProductionNote(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
		return
	}

	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddProductionNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Note text is required")
		return
	}

	svc := services.NewProductionService(config.GetDB())
	note, err := svc.AddNote(entryID, req.Text, &user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    note,
	})
}
