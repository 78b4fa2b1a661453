package auth

import (
	"crypto/rsa"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string
	Role   string
}

// Verifier checks bearer tokens. RSA when a public key is configured, HMAC
// secret otherwise.
type Verifier struct {
	pub    *rsa.PublicKey
	secret []byte
}

func NewVerifier(pubKeyPath, secret string) (*Verifier, error) {
	v := &Verifier{}
	if pubKeyPath != "" {
		b, err := os.ReadFile(pubKeyPath)
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, err
		}
		v.pub = pub
		return v, nil
	}
	if secret == "" {
		return nil, errors.New("jwt: public key path or secret required")
	}
	v.secret = []byte(secret)
	return v, nil
}

func (v *Verifier) Verify(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if v.pub != nil {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return v.pub, nil
		}
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{}
	if s, ok := claims["user_id"].(string); ok {
		out.UserID = s
	} else if s, ok := claims["sub"].(string); ok {
		out.UserID = s
	}
	if out.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	if r, ok := claims["role"].(string); ok {
		out.Role = r
	}
	return out, nil
}
