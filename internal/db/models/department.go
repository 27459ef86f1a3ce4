package models

import "time"

// Department is an organizational unit members belong to.
type Department struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
