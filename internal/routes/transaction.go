package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"MyFinance/internal/contracts"
	"MyFinance/internal/domain/transaction"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTransaction(c *gin.Context) {
	actor, err := h.actor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.TransactionCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	draft := &transaction.Draft{
		Description: body.Description,
		Recipient:   body.Recipient,
		Sender:      body.Sender,
		Amount:      body.Amount,
		Type:        transaction.Type(body.Type),
		Metadata:    transaction.Metadata(body.Metadata),
	}
	if body.TransactionDate != nil {
		draft.TransactionDate = *body.TransactionDate
	}
	if draft.CategoryId, err = contracts.ParseOptionalID("category_id", body.CategoryId); err != nil {
		h.respondError(c, err)
		return
	}
	if draft.BudgetId, err = contracts.ParseOptionalID("budget_id", body.BudgetId); err != nil {
		h.respondError(c, err)
		return
	}
	if draft.PotId, err = contracts.ParseOptionalID("pot_id", body.PotId); err != nil {
		h.respondError(c, err)
		return
	}

	created, err := h.TransactionService.CreateTransaction(c.Request.Context(), draft, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.TransactionSingleResponse{Transaction: created})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	sort := transaction.NewSort(c.Query("sort"), c.Query("order"))
	items, total, err := h.TransactionService.ListTransactions(c.Request.Context(), userID, filter, sort, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) ExportTransactions(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sort := transaction.NewSort(c.Query("sort"), c.Query("order"))
	items, err := h.TransactionService.ExportTransactions(c.Request.Context(), userID, filter, sort)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.Sheet.Write(&buf, items); err != nil {
		h.respondError(c, appErrors.ErrInternalServer.WithError(err))
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", pkg.SetTimestamps().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, infrastructure.TransactionSheetContentType, buf.Bytes())
}

func (h *Handler) GetTransactionSummary(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var window transaction.Window
	if window.From, err = parseQueryTime(c, "from"); err != nil {
		h.respondError(c, err)
		return
	}
	if window.To, err = parseQueryTime(c, "to"); err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.TransactionService.Summary(c.Request.Context(), userID, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.TransactionSummaryResponse{Summary: summary})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	transactionID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.TransactionService.GetTransaction(c.Request.Context(), transactionID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.TransactionSingleResponse{Transaction: entity})
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	transactionID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.TransactionUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	patch, err := transactionPatch(&body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.TransactionService.UpdateTransaction(c.Request.Context(), transactionID, userID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.TransactionSingleResponse{Transaction: updated})
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	transactionID, ok := h.parseID(c)
	if !ok {
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.TransactionService.DeleteTransaction(c.Request.Context(), transactionID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Transaction deleted"})
}

func transactionPatch(body *contracts.TransactionUpdateRequest) (*transaction.Patch, error) {
	patch := &transaction.Patch{
		Description:     body.Description,
		Recipient:       body.Recipient,
		Sender:          body.Sender,
		Amount:          body.Amount,
		TransactionDate: body.TransactionDate,
	}
	if body.Type != nil {
		t := transaction.Type(*body.Type)
		patch.Type = &t
	}
	if body.Metadata != nil {
		m := transaction.Metadata(*body.Metadata)
		patch.Metadata = &m
	}

	ids := []struct {
		field string
		in    contracts.NullableID
		out   *transaction.IDUpdate
	}{
		{"category_id", body.CategoryId, &patch.CategoryId},
		{"budget_id", body.BudgetId, &patch.BudgetId},
		{"pot_id", body.PotId, &patch.PotId},
	}
	for _, id := range ids {
		set, value, err := id.in.Parse(id.field)
		if err != nil {
			return nil, err
		}
		if set {
			*id.out = transaction.SetID(value)
		}
	}
	return patch, nil
}

func parseTransactionFilter(c *gin.Context) (*transaction.Filter, error) {
	filter := &transaction.Filter{
		Sender:    strings.TrimSpace(c.Query("sender")),
		Recipient: strings.TrimSpace(c.Query("recipient")),
	}

	var err error
	if filter.From, err = parseQueryTime(c, "from"); err != nil {
		return nil, err
	}
	if filter.To, err = parseQueryTime(c, "to"); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t := transaction.Type(strings.ToUpper(raw))
		filter.Type = &t
	}
	if filter.CategoryId, err = parseQueryID(c, "category_id"); err != nil {
		return nil, err
	}
	if filter.BudgetId, err = parseQueryID(c, "budget_id"); err != nil {
		return nil, err
	}
	if filter.PotId, err = parseQueryID(c, "pot_id"); err != nil {
		return nil, err
	}
	if filter.MinAmount, err = parseQueryInt64(c, "min_amount"); err != nil {
		return nil, err
	}
	if filter.MaxAmount, err = parseQueryInt64(c, "max_amount"); err != nil {
		return nil, err
	}
	return filter, nil
}
