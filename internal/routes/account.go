package routes

import (
	"net/http"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/account"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
)

func accountResponse(acc *account.Account) contracts.AccountResponse {
	return contracts.AccountResponse{
		Account:          acc,
		FormattedBalance: pkg.FormatMinor(acc.Balance),
	}
}

// GetMyAccount returns the caller's account, opening it on first use.
func (h *Handler) GetMyAccount(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	acc, err := h.AccountService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountResponse(acc))
}

func (h *Handler) CreateAccount(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	acc, err := h.AccountService.CreateAccount(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountResponse(acc))
}
