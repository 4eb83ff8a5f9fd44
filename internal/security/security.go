// Package security implements password hashing, user JWT issuance and
// application key generation.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// appKeyPrefix marks raw application keys so they are recognizable in
// logs and configs without revealing the secret part.
const appKeyPrefix = "rdk_"

// keyPrefixLen is how many leading characters of a raw key are kept for
// display.
const keyPrefixLen = 8

// UserClaims is the JWT payload carried by front-office tokens.
type UserClaims struct {
	UserID   uint64 `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueUserToken signs an HS256 token for a user.
func IssueUserToken(secret string, expiry time.Duration, userID uint64, username string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: jwt secret is empty")
	}
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a token and returns its claims.
func ParseUserToken(secret, tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("security: token invalid")
	}
	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("security: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether a plaintext password matches its hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateAppKey returns a new raw application key. Only the caller sees
// the raw value; persistence stores HashAppKey of it.
func GenerateAppKey() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("security: generate app key: %w", err)
	}
	return appKeyPrefix + strings.ReplaceAll(id.String(), "-", ""), nil
}

// HashAppKey returns the hex SHA-256 digest used to store and look up keys.
func HashAppKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// KeyPrefix returns the display prefix of a raw key.
func KeyPrefix(raw string) string {
	if len(raw) <= keyPrefixLen {
		return raw
	}
	return raw[:keyPrefixLen]
}

// GenerateRandomString returns n bytes of randomness hex-encoded, used for
// seeding secrets such as a missing JWT secret.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("security: random length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
