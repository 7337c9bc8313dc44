package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/pkg/jwt"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

type ctxKey string

const userKey ctxKey = "user"

// RequireAuth resolves the bearer token to a user and stores it on the request
// context. Every failure mode (missing header, bad signature, expiry, unknown
// subject) is a 401.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := jwt.ParseTokenFromHeader(r)
		if err != nil {
			json.WriteError(w, http.StatusUnauthorized, fmt.Errorf("could not validate credentials"))
			return
		}

		user, err := s.usecase.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, entity.ErrInvalidCredentials) {
				json.WriteError(w, http.StatusUnauthorized, fmt.Errorf("could not validate credentials"))
			} else {
				json.WriteError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func userFromContext(ctx context.Context) *entity.User {
	if user, ok := ctx.Value(userKey).(*entity.User); ok {
		return user
	}
	return nil
}
