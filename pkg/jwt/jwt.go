// Package jwt emite y verifica los tokens de sesión (HS256) de la API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity lo que el token afirma sobre el usuario autenticado.
type Identity struct {
	UserID   string
	TenantID string
	Role     string
}

// Claims claims estándar más la identidad. Role viaja en el token para que
// RequireRole decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// Signer firma y verifica tokens con un secreto compartido.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner construye el firmador. expMinutes puede ser negativo en tests (token ya vencido).
func NewSigner(secret, issuer string, expMinutes int) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret vacío")
	}
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    time.Duration(expMinutes) * time.Minute,
		now:    time.Now,
	}, nil
}

// Sign emite un token para la identidad dada.
func (s *Signer) Sign(id Identity) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   id.UserID,
		TenantID: id.TenantID,
		Role:     id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify valida firma, algoritmo, emisor y expiración y devuelve la identidad.
func (s *Signer) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("jwt: claims inválidos")
	}
	return Identity{UserID: claims.UserID, TenantID: claims.TenantID, Role: claims.Role}, nil
}
