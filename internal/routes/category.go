package routes

import (
	"net/http"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/category"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCategory(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.CategoryCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	entity := &category.Category{
		UserId: userID,
		Name:   body.Name,
		Color:  body.Color,
	}
	if err := h.CategoryService.Create(c.Request.Context(), entity); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.CategorySingleResponse{Category: entity})
}

func (h *Handler) ListCategories(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.CategoryService.List(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) GetCategory(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.CategoryService.GetByID(c.Request.Context(), categoryID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.CategorySingleResponse{Category: entity})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.CategoryUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	entity, err := h.CategoryService.Update(c.Request.Context(), categoryID, userID, &category.UpdateRequest{
		Name:  body.Name,
		Color: body.Color,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.CategorySingleResponse{Category: entity})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.CategoryService.Delete(c.Request.Context(), categoryID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Category deleted"})
}

func (h *Handler) ListCategoryTransactions(c *gin.Context) {
	categoryID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.TransactionService.ListByCategory(c.Request.Context(), categoryID, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}
