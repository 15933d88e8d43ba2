// internal/handlers/delegation.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainacademy/coursegate/internal/i18n"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

type DelegationHandler struct {
	delegationService *services.DelegationService
	ownershipService  *services.OwnershipService
	clock             services.Clock
}

func NewDelegationHandler(delegationService *services.DelegationService,
	ownershipService *services.OwnershipService, clock services.Clock) *DelegationHandler {
	return &DelegationHandler{
		delegationService: delegationService,
		ownershipService:  ownershipService,
		clock:             clock,
	}
}

type shareAccessRequest struct {
	CourseID         uint   `json:"course_id" binding:"required"`
	RecipientAddress string `json:"recipient_address" binding:"required"`
	DurationDays     int    `json:"duration_days" binding:"required,min=1,max=90"`
}

// POST /access/share
// The owner shares temporary access directly; the expiry is derived from the
// requested duration here, the engine only sees absolute times.
func (h *DelegationHandler) ShareAccess(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req shareAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	ownership, err := h.ownershipService.FindByCourseAndOwner(req.CourseID, userID)
	if err != nil {
		if errors.Is(err, services.ErrOwnershipNotFound) {
			utils.NotFoundResponse(c, "ownership")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	expiresAt := h.clock.Now().AddDate(0, 0, req.DurationDays)
	grant, err := h.delegationService.Grant(ownership.ID, req.RecipientAddress, expiresAt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateActiveGrant):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAccessGrantDuplicate))
		case errors.Is(err, services.ErrInvalidWallet):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationWallet), nil)
		case errors.Is(err, services.ErrOwnershipNotFound):
			utils.NotFoundResponse(c, "ownership")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAccessGranted),
		"grant":   grant,
	})
}

// PUT /access/:id/revoke
func (h *DelegationHandler) RevokeAccess(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	grantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	grant, err := h.delegationService.FindGrant(grantID)
	if err != nil {
		if errors.Is(err, services.ErrGrantNotFound) {
			utils.NotFoundResponse(c, "access")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Only the owner the grant derives from may revoke it.
	if grant.Ownership.OwnerID != userID {
		utils.ForbiddenResponse(c, "")
		return
	}

	revoked, err := h.delegationService.Revoke(grantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAccessRevoked),
		"revoked": revoked,
	})
}

// GET /access/mine
// Lists the authenticated wallet's effectively-active grants.
func (h *DelegationHandler) GetMyAccess(c *gin.Context) {
	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.SuccessResponse(c, gin.H{"grants": []interface{}{}})
		return
	}

	grants, err := h.delegationService.ListActiveForWallet(wallet)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"grants": grants})
}
