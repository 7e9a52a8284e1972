package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RoleAdmin       = "admin"
	RoleSalesperson = "vendedor"
)

// ErrEmptySecret se retorna si no hay secreto configurado.
var ErrEmptySecret = errors.New("jwt: secret vacío")

// Claims claims estándar más la identidad que se sella en cada venta.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
}

// Identity datos del usuario autenticado.
type Identity struct {
	UserID      string
	WorkspaceID string
	Name        string
	Role        string
}

// Generate genera un token HS256 firmado con la identidad. Lo usan herramientas y pruebas;
// la API solo verifica tokens.
func Generate(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      id.UserID,
		WorkspaceID: id.WorkspaceID,
		Name:        id.Name,
		Role:        id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la identidad.
// Un token sin workspace_id es inválido: todas las operaciones son por workspace.
func Parse(secret, tokenString string) (*Identity, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.WorkspaceID == "" {
		return nil, fmt.Errorf("token sin workspace_id")
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return &Identity{
		UserID:      userID,
		WorkspaceID: claims.WorkspaceID,
		Name:        claims.Name,
		Role:        claims.Role,
	}, nil
}
