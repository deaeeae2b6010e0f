package utils

import (
	"errors"
	"os"
	"sync"
	"time"

	"timeswap/config"

	"github.com/golang-jwt/jwt"
)

const devSecret = "timeswap-dev-secret"

var (
	secretOnce sync.Once
	secretKey  []byte
)

// secret resolves the signing key once: JWT_SECRET from config, then the
// environment, then a development fallback.
func secret() []byte {
	secretOnce.Do(func() {
		s := config.AppConfig.JWTSecret
		if s == "" {
			s = os.Getenv("JWT_SECRET")
		}
		if s == "" {
			if config.IsProduction() {
				GetLogger().Warn("JWT_SECRET is not set; using the development secret")
			}
			s = devSecret
		}
		secretKey = []byte(s)
	})
	return secretKey
}

// GenerateToken creates a signed JWT for subject. The auth service issues
// tokens in production; this is for operators and tests.
func GenerateToken(subject, username string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      subject,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret(), nil
	})
}

// ExtractIDFromToken returns the subject of a valid token.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
