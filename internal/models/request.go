// internal/models/request.go
package models

// AccessRequest is a requester-initiated workflow item for obtaining delegated
// access to a course. Status starts at pending; approved and rejected are
// terminal. Both addresses are stored normalized.
type AccessRequest struct {
	BaseModel
	CourseID         uint          `json:"course_id" gorm:"not null;index"`
	RequesterAddress string        `json:"requester_address" gorm:"size:64;not null;index"`
	OwnerAddress     string        `json:"owner_address" gorm:"size:64;not null;index"`
	DurationDays     int           `json:"duration_days" gorm:"not null"`
	Message          string        `json:"message,omitempty" gorm:"type:text"`
	Status           RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
