// internal/services/ownership_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/database"
	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

// OwnershipService is the ledger of permanent course ownerships. Rows are
// immutable once minted; delegated access derives from them.
type OwnershipService struct {
	db    *gorm.DB
	clock Clock
}

// MintAttestation carries the token identifier and transaction reference from
// the wallet layer. It is stored for audit but not verified here; signature
// and transaction verification happen before the data reaches this service.
type MintAttestation struct {
	TokenID string `json:"token_id" validate:"required,max=128"`
	TxHash  string `json:"tx_hash,omitempty" validate:"omitempty,max=128"`
}

func NewOwnershipService(db *gorm.DB, clock Clock) *OwnershipService {
	return &OwnershipService{db: db, clock: clock}
}

// Mint records a permanent ownership of a course. At most one ownership may
// exist per (course, owner); the duplicate check and insert run in one
// transaction, with the composite unique index as a backstop against
// concurrent minters.
func (s *OwnershipService) Mint(courseID, ownerID uint, att *MintAttestation) (*models.Ownership, error) {
	if err := utils.ValidateStruct(att); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	ownership := &models.Ownership{
		CourseID: courseID,
		OwnerID:  ownerID,
		TokenID:  att.TokenID,
		TxHash:   att.TxHash,
		MintedAt: s.clock.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Ownership
		err := tx.Where("course_id = ? AND owner_id = ?", courseID, ownerID).First(&existing).Error
		if err == nil {
			return ErrDuplicateOwnership
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Create(ownership).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateOwnership
			}
			return fmt.Errorf("failed to create ownership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ownership, nil
}

func (s *OwnershipService) FindByCourseAndOwner(courseID, ownerID uint) (*models.Ownership, error) {
	var ownership models.Ownership
	err := s.db.Where("course_id = ? AND owner_id = ?", courseID, ownerID).First(&ownership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOwnershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &ownership, nil
}

// ListByOwner returns the owner's ownerships joined with their courses, for
// display. Not a control decision; access checks go through AccessService.
func (s *OwnershipService) ListByOwner(ownerID uint) ([]models.Ownership, error) {
	var ownerships []models.Ownership
	if err := s.db.Where("owner_id = ?", ownerID).
		Preload("Course").
		Order("minted_at DESC").
		Find(&ownerships).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ownerships: %w", err)
	}
	return ownerships, nil
}

// ListByCourse enumerates every ownership of a course; the access facade
// walks this set when checking delegated grants.
func (s *OwnershipService) ListByCourse(courseID uint) ([]models.Ownership, error) {
	var ownerships []models.Ownership
	if err := s.db.Where("course_id = ?", courseID).Find(&ownerships).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ownerships: %w", err)
	}
	return ownerships, nil
}
