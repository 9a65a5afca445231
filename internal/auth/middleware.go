package auth

import (
	"fmt"
	"net/http"

	"train-station/internal/logger"
	"train-station/internal/utils"
)

// Middleware rejects requests without a valid bearer token and stores the Principal in
// the request context.
func Middleware(verifier Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", err.Error()))
				return
			}

			principal, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", "invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireStaffForWrites lets any authenticated caller read but only staff change data.
func RequireStaffForWrites(next http.Handler) http.Handler {
	staffOnly := RequireStaff(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			staffOnly.ServeHTTP(w, r)
		}
	})
}

// RequireStaff answers 403 to authenticated callers without staff rights.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authentication required", ErrMissingToken.Error()))
			return
		}
		if !p.IsStaff {
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "staff permission required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
