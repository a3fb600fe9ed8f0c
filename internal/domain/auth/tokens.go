package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, malformed, expired, or missing claims.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified account behind a token.
type Identity struct {
	AccountID string
	Email     string
}

// Tokens signs and verifies identity tokens. The rest of the application
// treats this as opaque: handlers only ever see an Identity.
type Tokens interface {
	Sign(id Identity) (string, error)
	Verify(token string) (*Identity, error)
}

// claims is the JWT claim set carried by signed tokens.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTTokens implements Tokens with HS256-signed JWTs.
type JWTTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTTokens creates a JWTTokens signer with the given HMAC secret and
// token lifetime.
func NewJWTTokens(secret []byte, ttl time.Duration) *JWTTokens {
	return &JWTTokens{secret: secret, ttl: ttl, now: time.Now}
}

// Sign issues a token for the given identity.
func (t *JWTTokens) Sign(id Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (t *JWTTokens) Verify(raw string) (*Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{AccountID: c.Subject, Email: c.Email}, nil
}
