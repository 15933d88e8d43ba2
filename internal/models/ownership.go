// internal/models/ownership.go
package models

import (
	"time"
)

// Ownership is a permanent, non-expiring access grant to a course, recorded
// when the course token is minted. At most one row exists per (course, owner);
// rows are never updated or deleted.
type Ownership struct {
	BaseModel
	CourseID uint `json:"course_id" gorm:"not null;uniqueIndex:idx_ownerships_course_owner"`
	OwnerID  uint `json:"owner_id" gorm:"not null;uniqueIndex:idx_ownerships_course_owner"`
	// Minting attestation from the wallet layer, stored opaquely for audit.
	TokenID  string    `json:"token_id" gorm:"size:128;not null"`
	TxHash   string    `json:"tx_hash,omitempty" gorm:"size:128"`
	MintedAt time.Time `json:"minted_at" gorm:"not null"`

	// Relationships
	Course Course            `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Owner  User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Grants []DelegatedAccess `json:"grants,omitempty" gorm:"foreignKey:OwnershipID"`
}

// DelegatedAccess is a time-bounded access grant derived from an Ownership.
// The recipient is a normalized wallet address and need not be a registered
// user. IsActive only ever transitions true to false; liveness additionally
// depends on ExpiresAt and is recomputed at query time. There is no
// background sweeper; a new grant for the same (ownership, recipient) retires
// its expired predecessors so the partial unique index on the pair holds.
type DelegatedAccess struct {
	BaseModel
	OwnershipID      uint      `json:"ownership_id" gorm:"not null;index"`
	RecipientAddress string    `json:"recipient_address" gorm:"size:64;not null;index"`
	ExpiresAt        time.Time `json:"expires_at" gorm:"not null"`
	IsActive         bool      `json:"is_active" gorm:"default:true"`

	// Relationships
	Ownership Ownership `json:"ownership,omitempty" gorm:"foreignKey:OwnershipID"`
}
