// internal/handlers/request.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainacademy/coursegate/internal/i18n"
	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

type submitRequestBody struct {
	CourseID     uint   `json:"course_id" binding:"required"`
	OwnerAddress string `json:"owner_address" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required"`
	Message      string `json:"message,omitempty"`
}

// POST /requests
// The requester address is taken from the authenticated wallet, never from
// the body.
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Connect a wallet before requesting access")
		return
	}

	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.requestService.Submit(&services.SubmitRequestInput{
		CourseID:         body.CourseID,
		RequesterAddress: wallet,
		OwnerAddress:     body.OwnerAddress,
		DurationDays:     body.DurationDays,
		Message:          body.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDuration):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationDuration), nil)
		case errors.Is(err, services.ErrSelfRequest):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, services.ErrCourseNotFound):
			utils.NotFoundResponse(c, "course")
		case errors.Is(err, services.ErrInvalidWallet):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationWallet), nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// GET /requests/course/:id
func (h *RequestHandler) GetRequestsByCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	requests, err := h.requestService.ListByCourse(courseID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GET /requests/sent
func (h *RequestHandler) GetSentRequests(c *gin.Context) {
	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.SuccessResponse(c, gin.H{"requests": []interface{}{}})
		return
	}

	requests, err := h.requestService.ListByRequester(wallet)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GET /requests/received
func (h *RequestHandler) GetReceivedRequests(c *gin.Context) {
	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.SuccessResponse(c, gin.H{"requests": []interface{}{}})
		return
	}

	requests, err := h.requestService.ListByOwner(wallet)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// PUT /requests/:id/approve
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	h.decideRequest(c, models.RequestStatusApproved)
}

// PUT /requests/:id/reject
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	h.decideRequest(c, models.RequestStatusRejected)
}

// decideRequest applies the owner's decision. An approval whose grant
// sub-step fails still responds 200 with the approved request; the grant
// failure rides along in grant_error so the decision record and the
// technical side effect stay distinguishable.
func (h *RequestHandler) decideRequest(c *gin.Context, status models.RequestStatus) {
	lang := utils.GetLangFromContext(c)
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Connect a wallet before deciding requests")
		return
	}

	request, err := h.requestService.Get(requestID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			utils.NotFoundResponse(c, "request")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Only the owner the request was addressed to may decide it.
	if request.OwnerAddress != utils.NormalizeWalletAddress(wallet) {
		utils.ForbiddenResponse(c, "")
		return
	}

	result, err := h.requestService.SetStatus(requestID, status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			utils.NotFoundResponse(c, "request")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyRequestAlreadyFinal))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	messageKey := i18n.KeyRequestRejected
	if status == models.RequestStatusApproved {
		messageKey = i18n.KeyRequestApproved
	}

	resp := gin.H{
		"message": i18n.T(lang, messageKey),
		"request": result.Request,
	}
	if result.Grant != nil {
		resp["grant"] = result.Grant
	}
	if result.GrantErr != nil {
		resp["grant_error"] = result.GrantErr.Error()
	}

	utils.SuccessResponse(c, resp)
}
