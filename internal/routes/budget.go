package routes

import (
	"net/http"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateBudget(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.BudgetCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	categoryID, err := contracts.ParseOptionalID("category_id", body.CategoryId)
	if err != nil {
		h.respondError(c, err)
		return
	}

	created, err := h.BudgetService.CreateBudget(c.Request.Context(), &budget.CreateRequest{
		UserId:      userID,
		CategoryId:  categoryID,
		Name:        body.Name,
		Description: body.Description,
		Color:       body.Color,
		TotalAmount: body.TotalAmount,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.BudgetSingleResponse{Budget: created})
}

func (h *Handler) ListBudgets(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.BudgetService.ListBudgets(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) GetBudgetSummary(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.BudgetService.GetBudgetSummary(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.BudgetSummaryResponse{Summary: summary})
}

func (h *Handler) GetBudget(c *gin.Context) {
	budgetID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.BudgetService.GetBudgetByID(c.Request.Context(), budgetID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.BudgetSingleResponse{Budget: entity})
}

func (h *Handler) UpdateBudget(c *gin.Context) {
	budgetID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.BudgetUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	req := &budget.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Color:       body.Color,
		TotalAmount: body.TotalAmount,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		IsActive:    body.IsActive,
	}
	set, categoryID, err := body.CategoryId.Parse("category_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if set {
		req.CategoryId = categoryID
		req.ClearCategory = categoryID == nil
	}

	updated, err := h.BudgetService.UpdateBudget(c.Request.Context(), budgetID, userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.BudgetSingleResponse{Budget: updated})
}

func (h *Handler) DeleteBudget(c *gin.Context) {
	budgetID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.BudgetService.DeleteBudget(c.Request.Context(), budgetID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Budget deleted"})
}

func (h *Handler) ListBudgetTransactions(c *gin.Context) {
	budgetID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.TransactionService.ListByBudget(c.Request.Context(), budgetID, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}
