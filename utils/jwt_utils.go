package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by a storefront bearer token.
type Claims struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret      []byte
	customerTTL time.Duration
	adminTTL    time.Duration
	now         func() time.Time
}

func NewJWTManager(secret string, customerTTL, adminTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:      []byte(secret),
		customerTTL: customerTTL,
		adminTTL:    adminTTL,
		now:         time.Now,
	}
}

func (m *JWTManager) GenerateCustomerToken(id int64, name, email string) (string, error) {
	return m.sign(Claims{ID: id, Name: name, Email: email, Role: RoleCustomer}, m.customerTTL)
}

func (m *JWTManager) GenerateAdminToken(id int64, username string) (string, error) {
	return m.sign(Claims{ID: id, Username: username, Role: RoleAdmin}, m.adminTTL)
}

func (m *JWTManager) sign(c Claims, ttl time.Duration) (string, error) {
	now := m.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(c.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func (m *JWTManager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
