package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"MyFinance/config"
	"MyFinance/internal/domain/user"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// UserLookup is satisfied by user.Service.
type UserLookup interface {
	GetByID(ctx context.Context, id ulid.ULID) (*user.User, error)
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  UserLookup
}

func NewJwtService(cfg config.JWTConfig, users UserLookup) (*JwtService, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// tokens will not survive a restart
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		logger.Warn().Msg("jwt.secret is empty, using a random signing key")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &JwtService{
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    ttl,
		users:  users,
	}, nil
}

// GenerateToken signs an HS256 token whose subject is the user id.
func (j *JwtService) GenerateToken(u *user.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.ttl)
	claims := &Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Id.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (j *JwtService) ParseToken(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Authenticate validates the token and loads its user, rejecting inactive accounts.
func (j *JwtService) Authenticate(ctx context.Context, tokenStr string) (*user.User, error) {
	claims, err := j.ParseToken(tokenStr)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.WithError(err)
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.WithError(err)
	}

	u, err := j.users.GetByID(ctx, userID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, appErrors.ErrUnauthorized.WithError(err)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, appErrors.ErrUnauthorized.WithError(errors.New("user is inactive"))
	}
	return u, nil
}

func AuthMiddleware(j *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, appErrors.ErrUnauthorized.WithMessage("Missing bearer token"))
			return
		}

		u, err := j.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, appErrors.FromError(err))
			return
		}

		c.Set(ContextUserID, u.Id.String())
		c.Set(ContextUsername, u.Username)
		c.Next()
	}
}
