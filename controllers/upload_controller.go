package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/services"
	"github.com/amara-atelier/atelier-orders-api/utils"
)

// UploadDesignImage handles POST /api/v1/uploads/design - uploads a design
// reference image for a custom order item and returns its storage key
func UploadDesignImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the 'image' field")
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		// No S3 configured (development): fall back to local storage
		if err := utils.ValidateImageFile(fileHeader); err != nil {
			if uploadErr, ok := err.(*utils.FileUploadError); ok {
				respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
				return
			}
			respondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
			return
		}

		filename, err := utils.SaveUploadedFile(fileHeader, utils.UploadDir)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to save uploaded file")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data": gin.H{
				"image_key": filename,
				"image_url": utils.GetImageURL(filename),
			},
		})
		return
	}

	imageKey, err := imageService.UploadImage(fileHeader)
	if err != nil {
		if uploadErr, ok := err.(*utils.FileUploadError); ok {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to upload image")
		return
	}

	imageURL, err := imageService.GetImageURL(imageKey)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to generate image URL")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"image_key": imageKey,
			"image_url": imageURL,
		},
	})
}

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves locally
// stored PNG images (development fallback)
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG files are supported")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
