package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/amara-atelier/atelier-orders-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	images map[string]string // key -> original filename
	mu     sync.RWMutex

	// FailUpload forces UploadImage to return an error, for failure-path tests
	FailUpload bool
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		images: make(map[string]string),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage simulates a validated image upload
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if m.FailUpload {
		return "", fmt.Errorf("mock upload failure")
	}
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key := fmt.Sprintf("designs/mock_%s", fileHeader.Filename)
	m.mu.Lock()
	m.images[key] = fileHeader.Filename
	m.mu.Unlock()

	return key, nil
}

// GetImageURL returns a mock URL for an uploaded image
func (m *MockImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.images[imageKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("image not found: %s", imageKey)
	}
	return fmt.Sprintf("https://cdn.test/%s", imageKey), nil
}

// DeleteImage removes an image from mock storage
func (m *MockImageService) DeleteImage(imageKey string) error {
	m.mu.Lock()
	delete(m.images, imageKey)
	m.mu.Unlock()
	return nil
}

// HasImage checks whether a key was uploaded (for test assertions)
func (m *MockImageService) HasImage(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.images[imageKey]
	return exists
}
