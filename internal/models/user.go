// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string  `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        *string `json:"email,omitempty" gorm:"uniqueIndex;size:255"`
	PasswordHash string  `json:"-" gorm:"size:255"`
	// Wallet addresses are stored in their normalized (lowercase) form.
	// Wallet-first accounts have no email or password.
	WalletAddress *string `json:"wallet_address,omitempty" gorm:"uniqueIndex;size:64"`
	IsCreator     bool    `json:"is_creator" gorm:"default:false"`

	// Relationships
	Courses    []Course    `json:"courses,omitempty" gorm:"foreignKey:CreatorID"`
	Ownerships []Ownership `json:"ownerships,omitempty" gorm:"foreignKey:OwnerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
