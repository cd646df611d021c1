package routes

import (
	"net/http"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/auth"
	"MyFinance/internal/domain/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Registration(c *gin.Context) {
	var body contracts.RegisterRequest
	if !h.bindJSON(c, &body) {
		return
	}

	created, err := h.AuthService.Register(c.Request.Context(), &user.RegisterRequest{
		Username: body.Username,
		Email:    body.Email,
		FullName: body.FullName,
		Password: body.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.RegisterResponse{
		Message: "User registered",
		User:    created,
	})
}

func (h *Handler) Authenticate(c *gin.Context) {
	var body contracts.LoginRequest
	if !h.bindJSON(c, &body) {
		return
	}

	session, err := h.AuthService.Login(c.Request.Context(), auth.Login{
		Identifier: body.Identifier,
		Password:   body.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
