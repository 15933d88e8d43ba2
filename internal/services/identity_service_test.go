// internal/services/identity_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
)

const (
	walletAlice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletBob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	walletCarol = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type IdentityServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *IdentityService
}

func (suite *IdentityServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewIdentityService(suite.db)
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateCreatesUser() {
	user, err := suite.service.ResolveOrCreate(walletAlice)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), user)
	assert.NotZero(suite.T(), user.ID)
	assert.Equal(suite.T(), walletAlice, *user.WalletAddress)
	assert.True(suite.T(), strings.HasPrefix(user.Username, "user_"))
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateIsIdempotent() {
	first, err := suite.service.ResolveOrCreate(walletAlice)
	assert.NoError(suite.T(), err)

	second, err := suite.service.ResolveOrCreate(walletAlice)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, second.ID)

	var count int64
	suite.db.Table("users").Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateIgnoresAddressCase() {
	first, err := suite.service.ResolveOrCreate(walletAlice)
	assert.NoError(suite.T(), err)

	mixed := "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	second, err := suite.service.ResolveOrCreate(mixed)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, second.ID)
	assert.Equal(suite.T(), walletAlice, *second.WalletAddress)
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateNormalizesLegacyRows() {
	// Simulate a pre-normalization row stored with uppercase hex.
	legacy := "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	createTestUser(suite.T(), suite.db, "legacy_user", legacy)

	user, err := suite.service.ResolveOrCreate(walletAlice)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "legacy_user", user.Username)
	assert.Equal(suite.T(), walletAlice, *user.WalletAddress)
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateLosesInsertRace() {
	// A rival caller registers the wallet after the lookup misses but before
	// the insert lands; the insert must yield to the row the rival won with.
	raced := false
	err := suite.db.Callback().Create().Before("gorm:create").Register("rival_wallet", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.User); !ok {
			return
		}
		raced = true
		wallet := walletAlice
		rival := models.User{Username: "rival", WalletAddress: &wallet}
		if err := suite.db.Session(&gorm.Session{NewDB: true}).Create(&rival).Error; err != nil {
			suite.T().Fatalf("failed to create rival user: %v", err)
		}
	})
	assert.NoError(suite.T(), err)

	user, err := suite.service.ResolveOrCreate(walletAlice)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), raced)
	assert.Equal(suite.T(), "rival", user.Username)

	var count int64
	suite.db.Table("users").Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *IdentityServiceTestSuite) TestResolveOrCreateRejectsInvalidAddress() {
	_, err := suite.service.ResolveOrCreate("not-a-wallet")
	assert.ErrorIs(suite.T(), err, ErrInvalidWallet)

	_, err = suite.service.ResolveOrCreate("")
	assert.ErrorIs(suite.T(), err, ErrInvalidWallet)
}

func (suite *IdentityServiceTestSuite) TestFindByWalletNeverCreates() {
	user, err := suite.service.FindByWallet(walletBob)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), user)

	var count int64
	suite.db.Table("users").Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *IdentityServiceTestSuite) TestFindByWalletIgnoresCase() {
	createTestUser(suite.T(), suite.db, "bob", walletBob)

	user, err := suite.service.FindByWallet("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), user)
	assert.Equal(suite.T(), "bob", user.Username)
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceTestSuite))
}
