package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/example/questline/internal/apperr"
	"github.com/example/questline/internal/ctxutil"
	"github.com/example/questline/internal/logging"
)

// Claims are the JWT claims accepted by the API.
// UserID falls back to the registered subject when absent.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	logger logrus.FieldLogger
}

// NewAuthenticator creates an Authenticator for the shared secret.
func NewAuthenticator(secret []byte, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{secret: secret, logger: logger}
}

// Handler rejects requests without a valid bearer token and stores the
// user id in the request context.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, r, a.logger, apperr.Unauthorized("missing Authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, r, a.logger, apperr.Unauthorized("invalid Authorization header format"))
			return
		}

		userID, err := a.validate(strings.TrimSpace(parts[1]))
		if err != nil {
			logging.FromContext(r.Context(), a.logger).WithError(err).Debug("token validation failed")
			writeError(w, r, a.logger, apperr.Unauthorized("invalid token"))
			return
		}

		ctx := ctxutil.WithUserID(r.Context(), userID)
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx, a.logger).WithField("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validate parses the token and returns its user id.
func (a *Authenticator) validate(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", jwt.ErrTokenRequiredClaimMissing
	}
	return userID, nil
}

// IssueToken signs a token for userID. Used by the CLI for local testing.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// RateLimiter limits requests per authenticated user.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	limit    rate.Limit
	burst    int
	logger   logrus.FieldLogger
}

// NewRateLimiter allows perMinute requests per user, bursting to the same amount.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int, logger logrus.FieldLogger) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Inf,
		burst:    1,
		logger:   logger,
	}
	if perMinute > 0 {
		rl.limit = rate.Limit(float64(perMinute) / 60.0)
		rl.burst = perMinute
	}
	return rl
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, ok = rl.limiters[key]; !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ctxutil.UserFromContext(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !rl.getLimiter(key).Allow() {
			logging.FromContext(r.Context(), rl.logger).WithField("path", r.URL.Path).Warn("rate limit exceeded")
			writeError(w, r, rl.logger, apperr.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestContext assigns a request id and a request-scoped logger.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		entry := s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		ctx := ctxutil.WithRequestID(r.Context(), requestID)
		ctx = logging.WithLogger(ctx, entry)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		entry.WithField("duration", time.Since(start)).Debug("request handled")
	})
}
