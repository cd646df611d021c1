package routes

import (
	"strconv"
	"strings"
	"time"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/auth"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/domain/category"
	"MyFinance/internal/domain/pot"
	"MyFinance/internal/domain/transaction"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/logger"
	"MyFinance/internal/middleware"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

type Handler struct {
	AuthService        *auth.Service
	AccountService     *account.Service
	CategoryService    *category.Service
	BudgetService      *budget.Service
	PotService         *pot.Service
	TransactionService *transaction.Service
	Sheet              infrastructure.TransactionSheet
	Limits             pkg.ListLimits
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (ulid.ULID, error) {
	userIDStr, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}

	userID, err := pkg.ParseULID(s)
	if err != nil {
		return ulid.ULID{}, appErrors.ErrUnauthorized.WithError(err)
	}

	return userID, nil
}

// actor is the authenticated user as the ledger sees it: id plus username for attribution.
func (h *Handler) actor(c *gin.Context) (transaction.Actor, error) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		return transaction.Actor{}, err
	}
	return transaction.Actor{
		UserID:   userID,
		Username: c.GetString(middleware.ContextUsername),
	}, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	p := &pkg.PaginationParams{}
	if s, err := pkg.ParseInt(c.DefaultQuery("skip", "0")); err == nil && s > 0 {
		p.Skip = s
	}
	if l, err := pkg.ParseInt(c.Query("limit")); err == nil && l > 0 {
		p.Limit = l
	}
	return h.Limits.Apply(p)
}

func (h *Handler) parseID(c *gin.Context) (ulid.ULID, bool) {
	id, err := pkg.ParseULID(c.Param("id"))
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("id", "invalid id format"))
		return ulid.ULID{}, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return false
	}
	return true
}

// parseQueryTime accepts RFC3339 or a plain date.
func parseQueryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.NewValidationError(key, key+" must be RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}

func parseQueryInt64(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, appErrors.NewValidationError(key, key+" must be an integer amount in minor units")
	}
	return &v, nil
}

func parseQueryID(c *gin.Context, key string) (*ulid.ULID, error) {
	raw := strings.TrimSpace(c.Query(key))
	return contracts.ParseOptionalID(key, &raw)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	logEvent := logger.Error
	if appErr.StatusCode < 500 {
		logEvent = logger.Warn
	}
	event := logEvent().Str("code", appErr.Code).Str("path", c.FullPath())
	if rid := c.GetString(middleware.ContextRequestID); rid != "" {
		event = event.Str("request_id", rid)
	}
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")
	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}
