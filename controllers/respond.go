package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amara-atelier/atelier-orders-api/models"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondDomainError maps a model/service error onto an HTTP status and the
// standard envelope
func respondDomainError(c *gin.Context, err error) {
	var de *models.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case models.ErrCodeInvalidStateTransition, models.ErrCodeCapacityExceeded, models.ErrCodeDuplicateOrderNumber:
			status = http.StatusConflict
		case models.ErrCodeInsufficientStock:
			status = http.StatusUnprocessableEntity
		}
		respondError(c, status, de.Code, de.Message)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Requested record not found")
		return
	}

	respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Operation failed")
}
