// internal/handlers/ownership.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainacademy/coursegate/internal/i18n"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

type OwnershipHandler struct {
	ownershipService *services.OwnershipService
}

func NewOwnershipHandler(ownershipService *services.OwnershipService) *OwnershipHandler {
	return &OwnershipHandler{
		ownershipService: ownershipService,
	}
}

// POST /courses/:id/mint
// The attestation arrives from the wallet layer after the on-chain mint; it
// is recorded as-is, not re-verified here.
func (h *OwnershipHandler) MintOwnership(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var att services.MintAttestation
	if err := c.ShouldBindJSON(&att); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&att)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	ownership, err := h.ownershipService.Mint(courseID, userID, &att)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateOwnership):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOwnershipDuplicate))
		case errors.Is(err, services.ErrCourseNotFound):
			utils.NotFoundResponse(c, "course")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyOwnershipMinted),
		"ownership": ownership,
	})
}

// GET /ownerships
func (h *OwnershipHandler) GetMyOwnerships(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	ownerships, err := h.ownershipService.ListByOwner(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"ownerships": ownerships})
}
