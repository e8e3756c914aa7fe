package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// PrincipalKind розрізняє два незалежні види сесій панелі
type PrincipalKind string

const (
	PrincipalAdminStaff PrincipalKind = "admin_staff"
	PrincipalClient     PrincipalKind = "client"
)

// Claims представляє JWT claims для обох видів принципалів.
// Для admin staff заповнені EmployeeID та Role, для клієнта — IDLuid.
type Claims struct {
	Kind       PrincipalKind       `json:"kind"`
	EmployeeID string              `json:"employee_id,omitempty"`
	Role       models.EmployeeRole `json:"role,omitempty"`
	IDLuid     string              `json:"id_luid,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager керує JWT токенами
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewJWTManager створює новий JWTManager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// GenerateEmployeeToken генерує токен для співробітника панелі
func (m *JWTManager) GenerateEmployeeToken(employee *models.Employee) (string, error) {
	claims := Claims{
		Kind:             PrincipalAdminStaff,
		EmployeeID:       employee.EmployeeID,
		Role:             employee.Role,
		RegisteredClaims: m.registeredClaims(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// GenerateClientToken генерує токен для клієнта порталу
func (m *JWTManager) GenerateClientToken(record *models.ClientRecord) (string, error) {
	claims := Claims{
		Kind:             PrincipalClient,
		IDLuid:           record.IDLuid,
		RegisteredClaims: m.registeredClaims(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ValidateToken валідує JWT токен і повертає claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Перевіряємо метод підпису
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// RefreshToken оновлює токен (якщо він валідний)
func (m *JWTManager) RefreshToken(tokenString string) (string, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	newClaims := Claims{
		Kind:             claims.Kind,
		EmployeeID:       claims.EmployeeID,
		Role:             claims.Role,
		IDLuid:           claims.IDLuid,
		RegisteredClaims: m.registeredClaims(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	return token.SignedString([]byte(m.secretKey))
}

// TokenDuration повертає термін дії токенів
func (m *JWTManager) TokenDuration() time.Duration {
	return m.tokenDuration
}

func (m *JWTManager) registeredClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "luid-panel",
	}
}

// ExtractTokenFromBearer витягує токен з Authorization header
func ExtractTokenFromBearer(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "

	if len(authHeader) < len(bearerPrefix) {
		return "", fmt.Errorf("invalid authorization header")
	}

	if authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", fmt.Errorf("authorization header must start with 'Bearer '")
	}

	return authHeader[len(bearerPrefix):], nil
}
