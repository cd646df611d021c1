package fx

import (
	"context"

	"MyFinance/config"
	"MyFinance/internal/domain/user"
	"MyFinance/internal/infrastructure"
	"MyFinance/internal/middleware"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newJwtService,
		newRateLimiters,
		newIdempotencyStore,
	),
)

// rateLimiters keeps the public (per IP) and private (per user) windows apart.
type rateLimiters struct {
	Auth *middleware.RateLimiter
	User *middleware.RateLimiter
}

func newJwtService(cfg *config.Config, userSvc *user.Service) (*middleware.JwtService, error) {
	return middleware.NewJwtService(cfg.JWT, userSvc)
}

func newRateLimiters(lc fx.Lifecycle, cfg *config.Config) rateLimiters {
	limiters := rateLimiters{
		Auth: middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		User: middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			limiters.Auth.Stop()
			limiters.User.Stop()
			return nil
		},
	})
	return limiters
}

// newIdempotencyStore yields a nil interface without redis so the middleware passes through.
func newIdempotencyStore(cfg *config.Config, client *redis.Client) middleware.IdempotencyStore {
	if client == nil {
		return nil
	}
	return infrastructure.NewRedisIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
}
