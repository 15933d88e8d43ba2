// internal/services/request_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

// RequestService manages the request/approval workflow for delegated access.
// Requests start pending; approved and rejected are terminal.
type RequestService struct {
	db           *gorm.DB
	identity     *IdentityService
	ownerships   *OwnershipService
	delegation   *DelegationService
	notification *NotificationService
	clock        Clock
}

type SubmitRequestInput struct {
	CourseID         uint   `json:"course_id" validate:"required"`
	RequesterAddress string `json:"requester_address" validate:"required"`
	OwnerAddress     string `json:"owner_address" validate:"required"`
	DurationDays     int    `json:"duration_days" validate:"required"`
	Message          string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// StatusUpdateResult reports the outcome of SetStatus. On approval the status
// change and the grant side effect are surfaced separately: the owner's
// decision persists even when grant creation fails, and GrantErr carries the
// reason so the caller can retry or inspect the grant step on its own.
type StatusUpdateResult struct {
	Request  *models.AccessRequest
	Grant    *models.DelegatedAccess
	GrantErr error
}

func NewRequestService(db *gorm.DB, identity *IdentityService, ownerships *OwnershipService,
	delegation *DelegationService, notification *NotificationService, clock Clock) *RequestService {
	return &RequestService{
		db:           db,
		identity:     identity,
		ownerships:   ownerships,
		delegation:   delegation,
		notification: notification,
		clock:        clock,
	}
}

func (s *RequestService) Submit(in *SubmitRequestInput) (*models.AccessRequest, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if in.DurationDays < models.MinRequestDurationDays || in.DurationDays > models.MaxRequestDurationDays {
		return nil, ErrInvalidDuration
	}

	requester := utils.NormalizeWalletAddress(in.RequesterAddress)
	owner := utils.NormalizeWalletAddress(in.OwnerAddress)
	if requester == "" || owner == "" {
		return nil, ErrInvalidWallet
	}

	var course models.Course
	if err := s.db.Preload("Creator").First(&course, in.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// The UI blocks self-requests too, but that is not trusted here. The
	// stored creator wallet is normalized before comparing; legacy rows may
	// still carry mixed case until the resolver rewrites them.
	if requester == owner {
		return nil, ErrSelfRequest
	}
	if course.Creator.WalletAddress != nil &&
		utils.NormalizeWalletAddress(*course.Creator.WalletAddress) == requester {
		return nil, ErrSelfRequest
	}

	request := &models.AccessRequest{
		CourseID:         in.CourseID,
		RequesterAddress: requester,
		OwnerAddress:     owner,
		DurationDays:     in.DurationDays,
		Message:          in.Message,
		Status:           models.RequestStatusPending,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create access request: %w", err)
	}

	if s.notification != nil {
		go s.notification.SendRequestSubmittedNotification(request, &course)
	}

	return request, nil
}

// SetStatus moves a pending request to approved or rejected. Approval is a
// composite operation: the owner address is revalidated against the ownership
// ledger (it is caller-supplied and not trusted), then a delegated-access
// grant is issued for the requested duration. The approved status is
// persisted before the grant step and is not rolled back if that step fails;
// see StatusUpdateResult.
func (s *RequestService) SetStatus(requestID uint, newStatus models.RequestStatus) (*StatusUpdateResult, error) {
	if newStatus != models.RequestStatusApproved && newStatus != models.RequestStatusRejected {
		return nil, ErrInvalidTransition
	}

	var request models.AccessRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.Status != models.RequestStatusPending {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Model(&request).Update("status", newStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}
	request.Status = newStatus

	result := &StatusUpdateResult{Request: &request}

	if newStatus == models.RequestStatusRejected {
		if s.notification != nil {
			go s.notification.SendRequestDecidedNotification(&request)
		}
		return result, nil
	}

	result.Grant, result.GrantErr = s.issueGrantForRequest(&request)

	if s.notification != nil {
		go s.notification.SendRequestDecidedNotification(&request)
	}

	return result, nil
}

func (s *RequestService) issueGrantForRequest(request *models.AccessRequest) (*models.DelegatedAccess, error) {
	ownerUser, err := s.identity.FindByWallet(request.OwnerAddress)
	if err != nil {
		return nil, err
	}
	if ownerUser == nil {
		return nil, ErrOwnerNotFound
	}

	ownership, err := s.ownerships.FindByCourseAndOwner(request.CourseID, ownerUser.ID)
	if err != nil {
		if errors.Is(err, ErrOwnershipNotFound) {
			return nil, ErrOwnershipMissing
		}
		return nil, err
	}

	expiresAt := s.clock.Now().AddDate(0, 0, request.DurationDays)
	return s.delegation.Grant(ownership.ID, request.RequesterAddress, expiresAt)
}

func (s *RequestService) ListByCourse(courseID uint) ([]models.AccessRequest, error) {
	return s.list("course_id = ?", courseID)
}

func (s *RequestService) ListByRequester(requesterAddress string) ([]models.AccessRequest, error) {
	addr := utils.NormalizeWalletAddress(requesterAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}
	return s.list("requester_address = ?", addr)
}

func (s *RequestService) ListByOwner(ownerAddress string) ([]models.AccessRequest, error) {
	addr := utils.NormalizeWalletAddress(ownerAddress)
	if addr == "" {
		return nil, ErrInvalidWallet
	}
	return s.list("owner_address = ?", addr)
}

func (s *RequestService) list(query string, arg interface{}) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	if err := s.db.Where(query, arg).
		Preload("Course").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch access requests: %w", err)
	}
	return requests, nil
}

func (s *RequestService) Get(requestID uint) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := s.db.Preload("Course").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}
