package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/models"
)

// CreateTailorRequest represents the request body for registering a tailor
type CreateTailorRequest struct {
	Name            string `json:"name" binding:"required"`
	Specialty       string `json:"specialty"`
	MaxOrdersPerDay int    `json:"max_orders_per_day" binding:"omitempty,gt=0"`
}

// CreateTailor handles POST /api/v1/tailors (admin only)
func CreateTailor(c *gin.Context) {
	var req CreateTailorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	tailor := models.Tailor{
		Name:            req.Name,
		Specialty:       req.Specialty,
		MaxOrdersPerDay: req.MaxOrdersPerDay,
		IsActive:        true,
	}
	if tailor.MaxOrdersPerDay == 0 {
		tailor.MaxOrdersPerDay = 5
	}

	db := config.GetDB()
	if err := db.Create(&tailor).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create tailor")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tailor,
	})
}

// ListTailors handles GET /api/v1/tailors - active tailors with their
// current workload
func ListTailors(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("name ASC")
	if c.Query("available") == "true" {
		query = query.Where("is_active = ? AND current_orders < max_orders_per_day", true)
	}

	var tailors []models.Tailor
	if err := query.Find(&tailors).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load tailors")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tailors,
	})
}
