package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

const tokenTTL = 24 * time.Hour

// Claims - полезная нагрузка JWT: идентификатор и роль пользователя.
type Claims struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID int64, role model.Role) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// authenticate проверяет Bearer-токен и кладёт идентификатор и роль
// пользователя в контекст запроса. Движок доверяет этим значениям,
// повторно роли не проверяет.
func (s *Server) authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// requireRole пропускает только пользователей с указанной ролью.
func (s *Server) requireRole(role model.Role, next httprouter.Handle) httprouter.Handle {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if currentRole(r) != role {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r, ps)
	})
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func currentRole(r *http.Request) model.Role {
	role, _ := r.Context().Value(roleKey).(model.Role)
	return role
}
