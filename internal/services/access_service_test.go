// internal/services/access_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
)

type AccessServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	clock   *fakeClock
	service *AccessService

	ownerships *OwnershipService
	delegation *DelegationService

	owner  *models.User
	course *models.Course
}

func (suite *AccessServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.clock = newFakeClock()
	suite.service = NewAccessService(suite.db, suite.clock)
	suite.ownerships = NewOwnershipService(suite.db, suite.clock)
	suite.delegation = NewDelegationService(suite.db, suite.clock)

	creator := createTestCreator(suite.T(), suite.db, "creator", walletCarol)
	suite.owner = createTestUser(suite.T(), suite.db, "owner", walletAlice)
	suite.course = createTestCourse(suite.T(), suite.db, creator.ID, "Intro to Solidity")
}

func (suite *AccessServiceTestSuite) mintOwnership() *models.Ownership {
	ownership, err := suite.ownerships.Mint(suite.course.ID, suite.owner.ID,
		&MintAttestation{TokenID: "token-1"})
	if err != nil {
		suite.T().Fatalf("failed to mint test ownership: %v", err)
	}
	return ownership
}

func (suite *AccessServiceTestSuite) assertAccess(wallet string, accessType models.AccessType) {
	decision, err := suite.service.CheckAccess(suite.course.ID, wallet)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.HasAccess)
	if assert.NotNil(suite.T(), decision.AccessType) {
		assert.Equal(suite.T(), accessType, *decision.AccessType)
	}
}

func (suite *AccessServiceTestSuite) assertNoAccess(wallet string) {
	decision, err := suite.service.CheckAccess(suite.course.ID, wallet)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.HasAccess)
	assert.Nil(suite.T(), decision.AccessType)
}

func (suite *AccessServiceTestSuite) TestOwnerHasAccess() {
	suite.mintOwnership()
	suite.assertAccess(walletAlice, models.AccessTypeOwner)
}

func (suite *AccessServiceTestSuite) TestUnknownWalletHasNoAccess() {
	suite.mintOwnership()
	suite.assertNoAccess(walletBob)
}

func (suite *AccessServiceTestSuite) TestRegisteredNonOwnerHasNoAccess() {
	suite.mintOwnership()
	createTestUser(suite.T(), suite.db, "bystander", walletBob)
	suite.assertNoAccess(walletBob)
}

func (suite *AccessServiceTestSuite) TestGrantRecipientHasTemporaryAccess() {
	ownership := suite.mintOwnership()
	_, err := suite.delegation.Grant(ownership.ID, walletBob, suite.clock.Now().AddDate(0, 0, 7))
	assert.NoError(suite.T(), err)

	// The recipient never registered; access is address-based.
	suite.assertAccess(walletBob, models.AccessTypeTemporary)
}

func (suite *AccessServiceTestSuite) TestOwnerDominatesOverGrant() {
	// The owner also holds a delegated grant from another ownership of the
	// same course; the decision must still report owner.
	suite.mintOwnership()

	other := createTestUser(suite.T(), suite.db, "other_owner", walletBob)
	otherOwnership, err := suite.ownerships.Mint(suite.course.ID, other.ID,
		&MintAttestation{TokenID: "token-2"})
	assert.NoError(suite.T(), err)

	_, err = suite.delegation.Grant(otherOwnership.ID, walletAlice, suite.clock.Now().AddDate(0, 0, 7))
	assert.NoError(suite.T(), err)

	suite.assertAccess(walletAlice, models.AccessTypeOwner)
}

func (suite *AccessServiceTestSuite) TestRevokedGrantDeniesAccess() {
	ownership := suite.mintOwnership()
	grant, err := suite.delegation.Grant(ownership.ID, walletBob, suite.clock.Now().AddDate(0, 0, 7))
	assert.NoError(suite.T(), err)

	suite.assertAccess(walletBob, models.AccessTypeTemporary)

	_, err = suite.delegation.Revoke(grant.ID)
	assert.NoError(suite.T(), err)

	suite.assertNoAccess(walletBob)
}

func (suite *AccessServiceTestSuite) TestExpiredGrantDeniesAccess() {
	ownership := suite.mintOwnership()
	_, err := suite.delegation.Grant(ownership.ID, walletBob, suite.clock.Now().AddDate(0, 0, 7))
	assert.NoError(suite.T(), err)

	suite.clock.AdvanceDays(8)

	suite.assertNoAccess(walletBob)
}

func (suite *AccessServiceTestSuite) TestCheckAccessIgnoresAddressCase() {
	ownership := suite.mintOwnership()
	_, err := suite.delegation.Grant(ownership.ID, walletBob, suite.clock.Now().AddDate(0, 0, 7))
	assert.NoError(suite.T(), err)

	suite.assertAccess("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", models.AccessTypeOwner)
	suite.assertAccess("0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb", models.AccessTypeTemporary)
}

func (suite *AccessServiceTestSuite) TestCheckAccessRejectsInvalidWallet() {
	_, err := suite.service.CheckAccess(suite.course.ID, "nope")
	assert.ErrorIs(suite.T(), err, ErrInvalidWallet)
}

// Full workflow: request, approve, watch the grant expire.
func (suite *AccessServiceTestSuite) TestRequestApprovalLifecycle() {
	suite.mintOwnership()

	requests := NewRequestService(suite.db, NewIdentityService(suite.db),
		suite.ownerships, suite.delegation, nil, suite.clock)

	request, err := requests.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: walletBob,
		OwnerAddress:     walletAlice,
		DurationDays:     7,
	})
	assert.NoError(suite.T(), err)

	// Pending request confers nothing.
	suite.assertNoAccess(walletBob)

	result, err := requests.SetStatus(request.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), result.GrantErr)

	suite.assertAccess(walletBob, models.AccessTypeTemporary)

	suite.clock.AdvanceDays(8)

	suite.assertNoAccess(walletBob)
	// Ownership never expires.
	suite.assertAccess(walletAlice, models.AccessTypeOwner)
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceTestSuite))
}
