package contracts

import "MyFinance/internal/domain/category"

type CategoryCreateRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type CategoryUpdateRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
}

type CategorySingleResponse struct {
	Category *category.Category `json:"category"`
}
