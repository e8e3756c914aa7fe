package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/auth"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// ContextKey тип для ключів контексту
type ContextKey string

const (
	// PrincipalContextKey ключ для збереження claims принципала в контексті
	PrincipalContextKey ContextKey = "panel_principal"
)

// JWTAuthMiddleware перевіряє JWT токен та кладе claims в контекст
func JWTAuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			tokenString, err := auth.ExtractTokenFromBearer(authHeader)
			if err != nil {
				respondUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtManager.ValidateToken(tokenString)
			if err != nil {
				respondUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminStaff пропускає лише сесії співробітників
func RequireAdminStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetPrincipalFromContext(r.Context())
		if claims == nil || claims.Kind != auth.PrincipalAdminStaff {
			respondForbidden(w, "Access denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireMaster пропускає лише master співробітників.
// Звичайні співробітники мають read-mostly доступ: мутації
// клієнтів та співробітників доступні тільки master ролі.
func RequireMaster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetPrincipalFromContext(r.Context())
		if claims == nil || claims.Kind != auth.PrincipalAdminStaff {
			respondForbidden(w, "Access denied")
			return
		}

		if claims.Role != models.EmployeeRoleMaster {
			respondForbidden(w, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireClient пропускає лише клієнтські сесії
func RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetPrincipalFromContext(r.Context())
		if claims == nil || claims.Kind != auth.PrincipalClient || claims.IDLuid == "" {
			respondForbidden(w, "Access denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetPrincipalFromContext отримує claims принципала з контексту
func GetPrincipalFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(PrincipalContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// Helper functions

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func respondForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
