// internal/services/delegation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/database"
	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

// DelegationService creates, queries, and revokes time-bounded access grants
// derived from ownerships.
type DelegationService struct {
	db    *gorm.DB
	clock Clock
}

func NewDelegationService(db *gorm.DB, clock Clock) *DelegationService {
	return &DelegationService{db: db, clock: clock}
}

// IsEffectivelyActive is the single definition of grant liveness. A grant at
// exactly its expiry instant is expired.
func IsEffectivelyActive(grant *models.DelegatedAccess, now time.Time) bool {
	return grant.IsActive && grant.ExpiresAt.After(now)
}

// Grant issues a delegated-access grant from an ownership to a recipient
// wallet. The recipient need not be a registered user. At most one
// effectively-active grant may exist per (ownership, recipient): expired rows
// still flagged active are retired first, then the partial unique index on
// the pair makes the loser of a concurrent insert fail, which maps to
// ErrDuplicateActiveGrant.
func (s *DelegationService) Grant(ownershipID uint, recipientAddress string, expiresAt time.Time) (*models.DelegatedAccess, error) {
	addr := utils.NormalizeWalletAddress(recipientAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}

	now := s.clock.Now()
	if !expiresAt.After(now) {
		return nil, ErrInvalidExpiry
	}

	grant := &models.DelegatedAccess{
		OwnershipID:      ownershipID,
		RecipientAddress: addr,
		ExpiresAt:        expiresAt,
		IsActive:         true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ownership models.Ownership
		if err := tx.First(&ownership, ownershipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOwnershipNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Revoked and expired grants do not block a new one. Expired rows
		// still flagged active would trip the unique index below, so retire
		// them for this key first.
		if err := tx.Model(&models.DelegatedAccess{}).
			Where("ownership_id = ? AND recipient_address = ? AND is_active = ? AND expires_at <= ?",
				ownershipID, addr, true, now).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		var existing []models.DelegatedAccess
		if err := tx.Where("ownership_id = ? AND recipient_address = ? AND is_active = ?",
			ownershipID, addr, true).Find(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		for i := range existing {
			if IsEffectivelyActive(&existing[i], now) {
				return ErrDuplicateActiveGrant
			}
		}

		if err := tx.Create(grant).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateActiveGrant
			}
			return fmt.Errorf("failed to create access grant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return grant, nil
}

// Revoke deactivates a grant. Revoking an already-inactive grant still
// succeeds; only an unknown id is an error. IsActive never transitions back
// to true.
func (s *DelegationService) Revoke(grantID uint) (bool, error) {
	var grant models.DelegatedAccess
	if err := s.db.First(&grant, grantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrGrantNotFound
		}
		return false, fmt.Errorf("database error: %w", err)
	}

	if !grant.IsActive {
		return true, nil
	}

	if err := s.db.Model(&grant).Update("is_active", false).Error; err != nil {
		return false, fmt.Errorf("failed to revoke access grant: %w", err)
	}
	return true, nil
}

// FindGrant loads a grant with its ownership, for caller-side authorization.
func (s *DelegationService) FindGrant(grantID uint) (*models.DelegatedAccess, error) {
	var grant models.DelegatedAccess
	if err := s.db.Preload("Ownership").First(&grant, grantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &grant, nil
}

// ListActiveForWallet returns the wallet's effectively-active grants joined
// through their ownerships to courses. Liveness is recomputed here, not read
// from stored state, so expired rows drop out without any sweeper.
func (s *DelegationService) ListActiveForWallet(recipientAddress string) ([]models.DelegatedAccess, error) {
	addr := utils.NormalizeWalletAddress(recipientAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}

	var grants []models.DelegatedAccess
	if err := s.db.Where("recipient_address = ? AND is_active = ?", addr, true).
		Preload("Ownership").
		Preload("Ownership.Course").
		Order("expires_at ASC").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch access grants: %w", err)
	}

	now := s.clock.Now()
	active := make([]models.DelegatedAccess, 0, len(grants))
	for i := range grants {
		if IsEffectivelyActive(&grants[i], now) {
			active = append(active, grants[i])
		}
	}
	return active, nil
}
