package routes

import (
	"net/http"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/pot"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePot(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PotCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	created, err := h.PotService.CreatePot(c.Request.Context(), &pot.CreateRequest{
		UserId:       userID,
		Name:         body.Name,
		Description:  body.Description,
		Color:        body.Color,
		TargetAmount: body.TargetAmount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.PotSingleResponse{Pot: created})
}

func (h *Handler) ListPots(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.PotService.ListPots(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) GetPotSummary(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.PotService.Summary(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PotSummaryResponse{Summary: summary})
}

func (h *Handler) GetPot(c *gin.Context) {
	potID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.PotService.GetPot(c.Request.Context(), potID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PotSingleResponse{Pot: entity})
}

func (h *Handler) UpdatePot(c *gin.Context) {
	potID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PotUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	updated, err := h.PotService.UpdatePot(c.Request.Context(), potID, userID, &pot.UpdateRequest{
		Name:         body.Name,
		Description:  body.Description,
		Color:        body.Color,
		TargetAmount: body.TargetAmount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PotSingleResponse{Pot: updated})
}

func (h *Handler) DeletePot(c *gin.Context) {
	potID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.PotService.DeletePot(c.Request.Context(), potID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Pot deleted"})
}

// AdjustPotSavedAmount records a deposit (positive amount) or withdrawal (negative).
func (h *Handler) AdjustPotSavedAmount(c *gin.Context) {
	potID, ok := h.parseID(c)
	if !ok {
		return
	}
	actor, err := h.actor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PotAdjustRequest
	if !h.bindJSON(c, &body) {
		return
	}

	adjusted, err := h.PotService.AdjustSavedAmount(c.Request.Context(), potID, actor.UserID, actor, body.Amount, body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.PotSingleResponse{Pot: adjusted})
}

func (h *Handler) ListPotTransactions(c *gin.Context) {
	potID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.TransactionService.ListByPot(c.Request.Context(), potID, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}
