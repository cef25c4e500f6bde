package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims del token de sesión del portal de administradores.
type Claims struct {
	jwt.RegisteredClaims
	AdminID   string `json:"admin_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Principal identidad extraída de un token válido.
type Principal struct {
	AdminID   string
	CompanyID string
	Role      string
}

// Generate firma un token HS256 con adminID, companyID y role.
func Generate(secret, adminID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vacío")
	}
	if expMinutes <= 0 {
		return "", fmt.Errorf("jwt: expiración inválida %d", expMinutes)
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		AdminID:   adminID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve el principal.
func Parse(secret, tokenString string) (Principal, error) {
	if secret == "" {
		return Principal{}, errors.New("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, errors.New("claims inválidos")
	}
	if claims.AdminID == "" || claims.CompanyID == "" {
		return Principal{}, errors.New("claims incompletos")
	}
	return Principal{AdminID: claims.AdminID, CompanyID: claims.CompanyID, Role: claims.Role}, nil
}
