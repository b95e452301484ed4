// Package auth выпускает и проверяет токены операторов отладочного API.
// Изменение карты (тайлы, двери, перезагрузка) доступно только с токеном,
// у которого есть право правки.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL: срок жизни токена оператора
const DefaultTTL = 24 * time.Hour

const issuer = "collisiond"

// ErrWeakSecret возвращается для секрета короче 32 байт
var ErrWeakSecret = errors.New("секрет должен быть не короче 32 байт")

// Claims represents JWT claims
type Claims struct {
	Operator string `json:"operator"`
	CanEdit  bool   `json:"can_edit"`
	jwt.RegisteredClaims
}

// TokenIssuer подписывает токены операторов HS256
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer создаёт издателя с секретом в base64.
// Пустой секрет заменяется случайным: токены живут до перезапуска процесса.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	var key []byte
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("ошибка генерации секрета: %w", err)
		}
	} else {
		decoded, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("секрет не в base64: %w", err)
		}
		if len(decoded) < 32 {
			return nil, ErrWeakSecret
		}
		key = decoded
	}

	return &TokenIssuer{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for the operator
func (i *TokenIssuer) Issue(operator string, canEdit bool) (string, error) {
	now := i.now()
	claims := &Claims{
		Operator: operator,
		CanEdit:  canEdit,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate checks token validity and returns its claims
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))

	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("токен недействителен")
	}
	return claims, nil
}

// GenerateSecureSecret generates a new secure secret key
func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
