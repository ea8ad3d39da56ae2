// Package identity resolves and issues caller identities: JWT access
// tokens, the closed role set, and the password policy for registration.
package identity

import (
	"errors"
	"strconv"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role string from a token claim or a storage row.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Principal is the resolved identity of the caller for one request.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// RateKey is the rate-limit key component for an authenticated caller.
func (p Principal) RateKey() string {
	return "user:" + strconv.FormatInt(p.ID, 10)
}

// AnonymousRateKey keys unauthenticated callers by client address.
func AnonymousRateKey(clientIP string) string {
	return "ip:" + clientIP
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 access token for the given user.
func SignToken(secret string, userID int64, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken checks signature and expiry and returns the claimed
// principal. Expired tokens are distinguished internally from malformed
// ones; callers map both to the same unauthorized kind.
func VerifyToken(secret, tokenStr string) (Principal, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, ErrTokenInvalid
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, ErrTokenInvalid
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Principal{}, ErrTokenInvalid
	}
	return Principal{ID: id, Role: role}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the registration password policy: at least
// 10 characters with a digit, a symbol, and mixed-case letters.
func ValidatePassword(password string) error {
	if len(password) < 10 {
		return errors.New("password must be at least 10 characters")
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	switch {
	case !upper || !lower:
		return errors.New("password must include mixed case letters")
	case !digit:
		return errors.New("password must include a digit")
	case !symbol:
		return errors.New("password must include a symbol")
	}
	return nil
}
