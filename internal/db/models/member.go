// Package models contains database model definitions.
package models

import "time"

// Member is a person whose attendance is recorded.
type Member struct {
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Name is the full name of the member.
	Name string `gorm:"size:200;not null;index" json:"name"`
	// Dept is the name of the department the member belongs to.
	Dept string `gorm:"column:dept;size:100;not null;index" json:"dept"`
	// Role is the function of the member inside the department, e.g. "choriste".
	Role      string    `gorm:"size:100" json:"role"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	BirthDate string    `gorm:"size:10" json:"birth_date"` // YYYY-MM-DD
	Address   string    `gorm:"size:255" json:"address"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepartmentName returns the department of the member.
func (m Member) DepartmentName() string {
	return m.Dept
}
