// internal/services/access_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

// AccessService is the single entry point content-serving code consults to
// decide whether a wallet may view a course.
type AccessService struct {
	db    *gorm.DB
	clock Clock
}

type AccessDecision struct {
	HasAccess  bool               `json:"has_access"`
	AccessType *models.AccessType `json:"access_type"`
}

func NewAccessService(db *gorm.DB, clock Clock) *AccessService {
	return &AccessService{db: db, clock: clock}
}

// CheckAccess resolves, in order: ownership through a registered identity,
// then an effectively-active delegated grant to the wallet, else no access.
// Ownership dominates regardless of any delegated-access state. The lookup
// never creates a user and runs inside one transaction so a single check sees
// a consistent snapshot.
func (s *AccessService) CheckAccess(courseID uint, walletAddress string) (*AccessDecision, error) {
	addr := utils.NormalizeWalletAddress(walletAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}

	decision := &AccessDecision{}
	now := s.clock.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("LOWER(wallet_address) = ?", addr).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}
		if err == nil {
			var ownership models.Ownership
			err := tx.Where("course_id = ? AND owner_id = ?", courseID, user.ID).First(&ownership).Error
			if err == nil {
				accessType := models.AccessTypeOwner
				decision.HasAccess = true
				decision.AccessType = &accessType
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", err)
			}
		}

		// Delegated access is address-based; the recipient may never have
		// registered.
		var grants []models.DelegatedAccess
		if err := tx.Joins("JOIN ownerships ON ownerships.id = delegated_accesses.ownership_id").
			Where("ownerships.course_id = ? AND delegated_accesses.recipient_address = ? AND delegated_accesses.is_active = ?",
				courseID, addr, true).
			Find(&grants).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		for i := range grants {
			if IsEffectivelyActive(&grants[i], now) {
				accessType := models.AccessTypeTemporary
				decision.HasAccess = true
				decision.AccessType = &accessType
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decision, nil
}
