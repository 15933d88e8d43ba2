// internal/models/course.go
package models

import (
	"github.com/lib/pq"
)

type Course struct {
	BaseModel
	CreatorID   uint           `json:"creator_id" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"size:100;index"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);default:0"`
	CoverURL    string         `json:"cover_url" gorm:"size:512"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	// Publish state controls listing only; access checks ignore it.
	IsPublished bool `json:"is_published" gorm:"default:false;index"`

	// Relationships
	Creator    User            `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Ownerships []Ownership     `json:"ownerships,omitempty" gorm:"foreignKey:CourseID"`
	Requests   []AccessRequest `json:"requests,omitempty" gorm:"foreignKey:CourseID"`
}
