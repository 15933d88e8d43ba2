// internal/services/identity_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/database"
	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

// IdentityService maps wallet addresses to stable user identities. Addresses
// are normalized to lowercase before every lookup and write, so case-variant
// addresses can never produce duplicate users.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// ResolveOrCreate returns the user registered for the wallet address, creating
// one with a placeholder username if none exists. Stored addresses that differ
// from the normalized form only in case (legacy rows) are rewritten in place.
func (s *IdentityService) ResolveOrCreate(walletAddress string) (*models.User, error) {
	addr := utils.NormalizeWalletAddress(walletAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}

	var user models.User
	err := s.db.Where("LOWER(wallet_address) = ?", addr).First(&user).Error
	if err == nil {
		if user.WalletAddress == nil || *user.WalletAddress != addr {
			if err := s.db.Model(&user).Update("wallet_address", addr).Error; err != nil {
				return nil, fmt.Errorf("failed to normalize stored wallet address: %w", err)
			}
			user.WalletAddress = &addr
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	user = models.User{
		Username:      placeholderUsername(),
		WalletAddress: &addr,
	}
	if err := s.db.Create(&user).Error; err != nil {
		// A concurrent caller registered the wallet between the lookup and
		// the insert; the row it won with is the answer.
		if database.IsUniqueViolation(err) {
			var existing models.User
			if lookupErr := s.db.Where("LOWER(wallet_address) = ?", addr).First(&existing).Error; lookupErr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// FindByWallet is the read-only counterpart used by access checks; it never
// creates a user. Returns (nil, nil) when no user is registered for the
// address.
func (s *IdentityService) FindByWallet(walletAddress string) (*models.User, error) {
	addr := utils.NormalizeWalletAddress(walletAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}

	var user models.User
	err := s.db.Where("LOWER(wallet_address) = ?", addr).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func placeholderUsername() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
