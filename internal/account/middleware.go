package account

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"appupdate-service/internal/account/entity"
	"appupdate-service/internal/account/repo"
	"appupdate-service/internal/apperror"
	"appupdate-service/internal/respond"
	"appupdate-service/internal/token"
)

type ctxKey int

const accountCtxKey ctxKey = iota

// FromContext returns the account the authorization middleware resolved for
// this request.
func FromContext(ctx context.Context) (*entity.Account, bool) {
	a, ok := ctx.Value(accountCtxKey).(*entity.Account)
	return a, ok
}

// RequireAuth validates the bearer access token against both its signature
// and the account's currently bound pair. Any rejection short-circuits: the
// downstream handler never runs.
//
// Rejections are classified per stage: no usable header is 401, a bad
// signature or expired token is 403, and a token that decodes fine but no
// longer matches the stored binding is 401 — that last case is what makes a
// second login invalidate the first session's still-unexpired token.
func RequireAuth(r Repository, codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			raw, ok := bearerToken(req)
			if !ok {
				respond.Err(w, apperror.Unauthorized("missing bearer token"))
				return
			}

			claims, err := codec.DecodeAccess(raw)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					respond.Err(w, apperror.Forbidden("token expired"))
					return
				}
				respond.Err(w, apperror.Forbidden("invalid token"))
				return
			}

			id, err := uuid.Parse(claims.AccountID)
			if err != nil {
				respond.Err(w, apperror.Unauthorized("invalid account id in token"))
				return
			}

			a, err := r.GetByIDAndUsername(req.Context(), id, claims.Username)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respond.Err(w, apperror.Unauthorized("user not found"))
					return
				}
				respond.Err(w, apperror.Internal("failed to look up user", err))
				return
			}

			bound, err := r.TokenBound(req.Context(), id, raw, repo.SlotAccess)
			if err != nil {
				respond.Err(w, apperror.Internal("failed to check token binding", err))
				return
			}
			if !bound {
				respond.Err(w, apperror.Unauthorized("token superseded"))
				return
			}

			ctx := context.WithValue(req.Context(), accountCtxKey, a)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func bearerToken(req *http.Request) (string, bool) {
	authz := req.Header.Get("Authorization")
	if authz == "" {
		return "", false
	}
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
