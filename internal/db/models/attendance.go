package models

import (
	"strings"
	"time"
)

// AttendanceStatus is the stored presence state of a member at an event.
type AttendanceStatus string

const (
	// AttendancePresent means the member attended.
	AttendancePresent AttendanceStatus = "present"
	// AttendanceAbsent means the member did not attend.
	AttendanceAbsent AttendanceStatus = "absent"
	// AttendanceExcused means the member was absent with a justification.
	AttendanceExcused AttendanceStatus = "excused"
	// AttendanceLate means the member attended late.
	AttendanceLate AttendanceStatus = "late"
)

var attendanceCodes = map[AttendanceStatus]string{ //nolint:gochecknoglobals
	AttendancePresent: "P",
	AttendanceAbsent:  "A",
	AttendanceExcused: "AJ",
	AttendanceLate:    "L",
}

// ParseAttendanceStatus accepts either a stored status or a display code
// (P, A, AJ, L). Anything else is treated as present.
func ParseAttendanceStatus(s string) AttendanceStatus {
	s = strings.TrimSpace(s)

	for status, code := range attendanceCodes {
		if strings.EqualFold(s, code) || strings.EqualFold(s, string(status)) {
			return status
		}
	}

	return AttendancePresent
}

// Code returns the short display code of the status.
func (s AttendanceStatus) Code() string {
	if code, ok := attendanceCodes[s]; ok {
		return code
	}

	return attendanceCodes[AttendancePresent]
}

// Attendance records the presence of one member at one event.
type Attendance struct {
	ID        uint64           `gorm:"primaryKey" json:"id"`
	MemberID  uint64           `gorm:"not null;uniqueIndex:idx_attendance_member_event" json:"member_id"`
	EventID   uint64           `gorm:"not null;uniqueIndex:idx_attendance_member_event;index" json:"event_id"`
	Status    AttendanceStatus `gorm:"type:varchar(20);not null;default:'present'" json:"status"`
	Notes     string           `gorm:"type:text" json:"notes"`
	CreatedBy string           `gorm:"size:100" json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
