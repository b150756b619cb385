// internal/model/enrollment.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment は教育コンテンツの受講状況を表します。
// 受講の更新は教育モジュール側が行い、ここでは実績評価の参照元となるのみ。
type Enrollment struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"enrollment_id"`
	UserDocument string    `gorm:"not null;index" json:"user_document"`
	CourseName   string    `gorm:"not null" json:"course_name"`
	Progress     int       `gorm:"not null;default:0" json:"progress"` // 0-100
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
