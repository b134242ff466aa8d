package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"multipark/backoffice/internal/auth"
	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/models/entities"
)

var (
	errMissingCredentials = errors.New("Unauthorized. Missing API key or bearer token")
	errInvalidAPIKey      = errors.New("Unauthorized. Invalid API key")
	errInactiveAPIKey     = errors.New("Unauthorized. Inactive API key")
	errInvalidToken       = errors.New("Unauthorized. Invalid bearer token")
	errForbidden          = errors.New("Forbidden. Service role required")
)

// KeyLookup resolves a raw API key stored in api_keys; unknown keys return nil, nil
type KeyLookup interface {
	GetByKey(ctx context.Context, key string) (*entities.ApiKey, error)
}

// AuthMiddleware accepts the configured anon/service keys, a key from api_keys, or an
// HS256 bearer token. keys and signer may be nil.
func AuthMiddleware(cfg config.AuthConfig, keys KeyLookup, signer *auth.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()
			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims *auth.Claims

			switch {
			case apiKey != "":
				switch {
				case keyEquals(apiKey, cfg.ServiceKey):
					claims = &auth.Claims{Subject: "service_key", Role: constants.RoleService, Source: auth.SourceAPIKey}
				case keyEquals(apiKey, cfg.AnonKey):
					claims = &auth.Claims{Subject: "anon_key", Role: constants.RoleAnon, Source: auth.SourceAPIKey}
				case keys != nil:
					keyRes, err := keys.GetByKey(r.Context(), apiKey)
					if err != nil {
						logging.Error("API key lookup failed", "error", err)
						common.RespondError(w, initTime, errInvalidAPIKey, "", http.StatusUnauthorized)
						return
					}
					if keyRes == nil {
						common.RespondError(w, initTime, errInvalidAPIKey, "", http.StatusUnauthorized)
						return
					}
					if !keyRes.Status {
						common.RespondError(w, initTime, errInactiveAPIKey, "", http.StatusUnauthorized)
						return
					}
					claims = &auth.Claims{Subject: keyRes.ID, Role: keyRes.Role, Source: auth.SourceAPIKey}
				default:
					common.RespondError(w, initTime, errInvalidAPIKey, "", http.StatusUnauthorized)
					return
				}

			case strings.HasPrefix(authHeader, "Bearer ") && signer != nil:
				parsed, err := signer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					logging.Debug("Bearer token rejected", "error", err)
					common.RespondError(w, initTime, errInvalidToken, "", http.StatusUnauthorized)
					return
				}
				claims = parsed

			default:
				common.RespondError(w, initTime, errMissingCredentials, "", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireService rejects callers without the service role
func RequireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.GetClaims(r.Context()).CanWrite() {
			common.RespondError(w, time.Now(), errForbidden, "", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func keyEquals(given, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(configured)) == 1
}
