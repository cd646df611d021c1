package middleware

import (
	"bytes"
	"context"
	"net/http"

	"MyFinance/internal/contracts"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

// IdempotencyStore is satisfied by infrastructure.RedisIdempotencyStore.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) (*contracts.IdempotentResponse, bool, error)
	Complete(ctx context.Context, key string, resp *contracts.IdempotentResponse) error
	Release(ctx context.Context, key string) error
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a POST or PATCH that repeats an
// Idempotency-Key. A key still in flight is rejected with IDEMPOTENCY_CONFLICT.
// Server errors and panics release the key so the client may retry. With a nil store
// the middleware does nothing.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyHeader)
		if store == nil || header == "" || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPatch) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.GetString(ContextUserID) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + header

		reserved, err := store.Reserve(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("idempotency_store_unavailable")
			c.Next()
			return
		}

		if !reserved {
			stored, found, err := store.Load(ctx, key)
			if err != nil {
				abortWithError(c, appErrors.FromError(err))
				return
			}
			if !found || stored == nil {
				abortWithError(c, appErrors.ErrIdempotencyConflict)
				return
			}
			c.Header(ReplayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
			c.Abort()
			return
		}

		// the request context may already be canceled once the handler returned
		storeCtx := context.WithoutCancel(ctx)
		settled := false
		defer func() {
			// reached without settling only while a handler panic unwinds to gin.Recovery
			if !settled {
				releaseKey(storeCtx, store, key)
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()
		settled = true

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			releaseKey(storeCtx, store, key)
			return
		}

		err = store.Complete(storeCtx, key, &contracts.IdempotentResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.String(),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency_complete_failed")
		}
	}
}

func releaseKey(ctx context.Context, store IdempotencyStore, key string) {
	if err := store.Release(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("idempotency_release_failed")
	}
}
