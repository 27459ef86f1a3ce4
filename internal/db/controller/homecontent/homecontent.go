// Package homecontent provides read and upsert operations for the landing page blocks.
package homecontent

import (
	"errors"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const typeQueryPattern = "type = ?"

var (
	// ErrHomeContentNotFound is returned when no active block exists for a type.
	ErrHomeContentNotFound = errors.New("home content not found")
	// ErrUnknownType is returned for a content type other than verse, testimony or video.
	ErrUnknownType = errors.New("unknown home content type")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves the active block of the given type.
func Get(db *gorm.DB, contentType models.HomeContentType) (*models.HomeContent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !contentType.Valid() {
		return nil, ErrUnknownType
	}

	var content models.HomeContent

	result := db.Where(typeQueryPattern, contentType).Where("is_active = ?", true).First(&content)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHomeContentNotFound
		}

		return nil, result.Error
	}

	return &content, nil
}

// GetAll retrieves every block, active or not.
func GetAll(db *gorm.DB) ([]models.HomeContent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var contents []models.HomeContent
	if err := db.Order("type ASC").Find(&contents).Error; err != nil {
		return nil, err
	}

	return contents, nil
}

// Set creates or updates the block of content.Type (upsert operation).
func Set(db *gorm.DB, content *models.HomeContent, updatedBy string) (*models.HomeContent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !content.Type.Valid() {
		return nil, ErrUnknownType
	}

	var existing models.HomeContent

	result := db.Where(typeQueryPattern, content.Type).First(&existing)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	// keep the row of the type, replace everything else
	existing.Type = content.Type
	existing.Title = content.Title
	existing.Subtitle = content.Subtitle
	existing.Content = content.Content
	existing.Reference = content.Reference
	existing.VideoURL = content.VideoURL
	existing.Author = content.Author
	existing.IsActive = content.IsActive
	existing.UpdatedBy = updatedBy

	if err := db.Save(&existing).Error; err != nil {
		return nil, err
	}

	return &existing, nil
}
