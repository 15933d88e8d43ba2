// internal/handlers/access.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainacademy/coursegate/internal/i18n"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

type AccessHandler struct {
	accessService *services.AccessService
}

func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
	}
}

// GET /courses/:id/access
// The content-serving layer calls this before streaming anything. The wallet
// comes from the authenticated session when present, otherwise from the
// ?wallet= query parameter (delegated recipients need not be registered).
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	wallet, _ := utils.GetWalletFromContext(c)
	if queryWallet := c.Query("wallet"); queryWallet != "" {
		wallet = queryWallet
	}
	if wallet == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationWallet), nil)
		return
	}

	decision, err := h.accessService.CheckAccess(courseID, wallet)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWallet) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationWallet), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, decision)
}
