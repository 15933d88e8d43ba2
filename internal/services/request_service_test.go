// internal/services/request_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
)

type RequestServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	clock   *fakeClock
	service *RequestService

	ownerships *OwnershipService
	delegation *DelegationService

	creator *models.User
	owner   *models.User
	course  *models.Course
}

func (suite *RequestServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.clock = newFakeClock()

	identity := NewIdentityService(suite.db)
	suite.ownerships = NewOwnershipService(suite.db, suite.clock)
	suite.delegation = NewDelegationService(suite.db, suite.clock)
	suite.service = NewRequestService(suite.db, identity, suite.ownerships,
		suite.delegation, nil, suite.clock)

	suite.creator = createTestCreator(suite.T(), suite.db, "creator", walletCarol)
	suite.owner = createTestUser(suite.T(), suite.db, "owner", walletAlice)
	suite.course = createTestCourse(suite.T(), suite.db, suite.creator.ID, "Intro to Solidity")
}

func (suite *RequestServiceTestSuite) mintOwnership() *models.Ownership {
	ownership, err := suite.ownerships.Mint(suite.course.ID, suite.owner.ID,
		&MintAttestation{TokenID: "token-1"})
	if err != nil {
		suite.T().Fatalf("failed to mint test ownership: %v", err)
	}
	return ownership
}

func (suite *RequestServiceTestSuite) submit(days int) (*models.AccessRequest, error) {
	return suite.service.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: walletBob,
		OwnerAddress:     walletAlice,
		DurationDays:     days,
		Message:          "please share",
	})
}

func (suite *RequestServiceTestSuite) TestSubmitCreatesPendingRequest() {
	request, err := suite.submit(7)

	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), request.ID)
	assert.Equal(suite.T(), models.RequestStatusPending, request.Status)
	assert.Equal(suite.T(), walletBob, request.RequesterAddress)
	assert.Equal(suite.T(), walletAlice, request.OwnerAddress)
	assert.Equal(suite.T(), 7, request.DurationDays)
}

func (suite *RequestServiceTestSuite) TestSubmitNormalizesAddresses() {
	request, err := suite.service.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		OwnerAddress:     "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa",
		DurationDays:     7,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), walletBob, request.RequesterAddress)
	assert.Equal(suite.T(), walletAlice, request.OwnerAddress)
}

func (suite *RequestServiceTestSuite) TestSubmitDurationBounds() {
	_, err := suite.submit(0)
	assert.Error(suite.T(), err)

	_, err = suite.submit(91)
	assert.ErrorIs(suite.T(), err, ErrInvalidDuration)

	_, err = suite.submit(-5)
	assert.ErrorIs(suite.T(), err, ErrInvalidDuration)

	_, err = suite.submit(1)
	assert.NoError(suite.T(), err)

	_, err = suite.submit(90)
	assert.NoError(suite.T(), err)
}

func (suite *RequestServiceTestSuite) TestSubmitUnknownCourse() {
	_, err := suite.service.Submit(&SubmitRequestInput{
		CourseID:         9999,
		RequesterAddress: walletBob,
		OwnerAddress:     walletAlice,
		DurationDays:     7,
	})
	assert.ErrorIs(suite.T(), err, ErrCourseNotFound)
}

func (suite *RequestServiceTestSuite) TestSubmitRejectsSelfRequest() {
	_, err := suite.service.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: walletAlice,
		OwnerAddress:     walletAlice,
		DurationDays:     7,
	})
	assert.ErrorIs(suite.T(), err, ErrSelfRequest)

	// The course creator requesting access to their own course.
	_, err = suite.service.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: walletCarol,
		OwnerAddress:     walletAlice,
		DurationDays:     7,
	})
	assert.ErrorIs(suite.T(), err, ErrSelfRequest)
}

func (suite *RequestServiceTestSuite) TestSubmitRejectsCreatorWithLegacyWallet() {
	// A creator row stored before normalization still carries mixed case;
	// the self-request check must see through it.
	legacy := "0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"
	legacyCreator := createTestCreator(suite.T(), suite.db, "legacy_creator", legacy)
	course := createTestCourse(suite.T(), suite.db, legacyCreator.ID, "Legacy Course")

	_, err := suite.service.Submit(&SubmitRequestInput{
		CourseID:         course.ID,
		RequesterAddress: walletCarol,
		OwnerAddress:     walletAlice,
		DurationDays:     7,
	})
	assert.ErrorIs(suite.T(), err, ErrSelfRequest)
}

func (suite *RequestServiceTestSuite) TestApproveIssuesGrant() {
	suite.mintOwnership()
	request, err := suite.submit(7)
	assert.NoError(suite.T(), err)

	result, err := suite.service.SetStatus(request.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
	assert.NoError(suite.T(), result.GrantErr)
	assert.NotNil(suite.T(), result.Grant)
	assert.Equal(suite.T(), walletBob, result.Grant.RecipientAddress)
	assert.Equal(suite.T(), suite.clock.Now().AddDate(0, 0, 7), result.Grant.ExpiresAt)
}

func (suite *RequestServiceTestSuite) TestRejectIssuesNoGrant() {
	suite.mintOwnership()
	request, err := suite.submit(7)
	assert.NoError(suite.T(), err)

	result, err := suite.service.SetStatus(request.ID, models.RequestStatusRejected)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestStatusRejected, result.Request.Status)
	assert.Nil(suite.T(), result.Grant)

	var count int64
	suite.db.Model(&models.DelegatedAccess{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *RequestServiceTestSuite) TestDecidedRequestsAreTerminal() {
	suite.mintOwnership()

	approved, err := suite.submit(7)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetStatus(approved.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)

	_, err = suite.service.SetStatus(approved.ID, models.RequestStatusRejected)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	_, err = suite.service.SetStatus(approved.ID, models.RequestStatusApproved)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)

	rejected, err := suite.submit(7)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetStatus(rejected.ID, models.RequestStatusRejected)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetStatus(rejected.ID, models.RequestStatusApproved)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *RequestServiceTestSuite) TestSetStatusRejectsPendingTarget() {
	request, err := suite.submit(7)
	assert.NoError(suite.T(), err)

	_, err = suite.service.SetStatus(request.ID, models.RequestStatusPending)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *RequestServiceTestSuite) TestSetStatusUnknownRequest() {
	_, err := suite.service.SetStatus(9999, models.RequestStatusApproved)
	assert.ErrorIs(suite.T(), err, ErrRequestNotFound)
}

func (suite *RequestServiceTestSuite) TestApproveWithoutOwnershipKeepsStatus() {
	// No ownership minted: the grant step must fail but the owner's decision
	// stands.
	request, err := suite.submit(7)
	assert.NoError(suite.T(), err)

	result, err := suite.service.SetStatus(request.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), result.GrantErr, ErrOwnershipMissing)
	assert.Nil(suite.T(), result.Grant)

	var stored models.AccessRequest
	suite.db.First(&stored, request.ID)
	assert.Equal(suite.T(), models.RequestStatusApproved, stored.Status)
}

func (suite *RequestServiceTestSuite) TestApproveWithUnregisteredOwner() {
	request, err := suite.service.Submit(&SubmitRequestInput{
		CourseID:         suite.course.ID,
		RequesterAddress: walletBob,
		OwnerAddress:     "0xffffffffffffffffffffffffffffffffffffffff",
		DurationDays:     7,
	})
	assert.NoError(suite.T(), err)

	result, err := suite.service.SetStatus(request.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), result.GrantErr, ErrOwnerNotFound)
	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
}

func (suite *RequestServiceTestSuite) TestApproveDuplicateGrantSurfacesError() {
	ownership := suite.mintOwnership()
	_, err := suite.delegation.Grant(ownership.ID, walletBob, suite.clock.Now().AddDate(0, 0, 30))
	assert.NoError(suite.T(), err)

	request, err := suite.submit(7)
	assert.NoError(suite.T(), err)

	result, err := suite.service.SetStatus(request.ID, models.RequestStatusApproved)
	assert.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), result.GrantErr, ErrDuplicateActiveGrant)
	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
}

func (suite *RequestServiceTestSuite) TestListByRequesterAndOwner() {
	_, err := suite.submit(7)
	assert.NoError(suite.T(), err)
	_, err = suite.submit(14)
	assert.NoError(suite.T(), err)

	sent, err := suite.service.ListByRequester(walletBob)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sent, 2)

	received, err := suite.service.ListByOwner("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), received, 2)

	none, err := suite.service.ListByRequester(walletCarol)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), none, 0)
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceTestSuite))
}
