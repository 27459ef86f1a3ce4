package models

import "time"

// HomeContentType names one block of the landing page.
type HomeContentType string

const (
	// HomeContentVerse is the verse of the week.
	HomeContentVerse HomeContentType = "verse"
	// HomeContentTestimony is the highlighted testimony.
	HomeContentTestimony HomeContentType = "testimony"
	// HomeContentVideo is the featured video.
	HomeContentVideo HomeContentType = "video"
)

// Valid reports whether t is a known content type.
func (t HomeContentType) Valid() bool {
	switch t {
	case HomeContentVerse, HomeContentTestimony, HomeContentVideo:
		return true
	default:
		return false
	}
}

// HomeContent is an editable block of the landing page. There is one row per type.
type HomeContent struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	Type      HomeContentType `gorm:"type:varchar(20);unique;not null" json:"type"`
	Title     string          `gorm:"size:255" json:"title"`
	Subtitle  string          `gorm:"size:255" json:"subtitle"`
	Content   string          `gorm:"type:text" json:"content"`
	Reference string          `gorm:"size:255" json:"reference"`
	VideoURL  string          `gorm:"size:512" json:"video_url"`
	Author    string          `gorm:"size:200" json:"author"`
	IsActive  bool            `gorm:"not null" json:"is_active"`
	UpdatedBy string          `gorm:"size:100" json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name used by HomeContent to `home_contents`.
func (HomeContent) TableName() string {
	return "home_contents"
}
