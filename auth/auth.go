package auth

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ContextKey is a defined type to be used in context.Context containing the Claims
type ContextKey string

// Context is key used in context.Context containing the Claims
const Context ContextKey = "authContext"

// SessionCookie is the cookie Clerk stores the session token in for same-site requests
const SessionCookie = "__session"

// Auth verifies Clerk session tokens
type Auth struct {
	Options
	key *rsa.PublicKey
}

// Claims is the subset of a Clerk session token we use. Subject is the Clerk user id.
type Claims struct {
	jwt.StandardClaims
	SessionID       string `json:"sid,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
}

// Options provides initialization parameters for Auth
type Options struct {
	Logger *zap.Logger

	// PublicKeyPEM is the instance's PEM encoded RSA public key. Literal "\n"
	// sequences, as found in single line env files, are accepted.
	PublicKeyPEM string
	// PublicKey takes precedence over PublicKeyPEM when set
	PublicKey *rsa.PublicKey

	// Leeway is the clock skew tolerated on exp/nbf/iat
	Leeway time.Duration
}

func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("nil option is invalid")
	}
	if o.Logger == nil {
		return fmt.Errorf("nil Logger is invalid")
	}
	if o.PublicKey == nil && strings.TrimSpace(o.PublicKeyPEM) == "" {
		return fmt.Errorf("Empty PublicKeyPEM is invalid")
	}
	if o.Leeway == 0 {
		o.Leeway = time.Second * 5
	}
	return nil
}

// New will return a new instance of Auth for authentication
func New(option Options) (*Auth, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}

	key := option.PublicKey
	if key == nil {
		pem := strings.ReplaceAll(option.PublicKeyPEM, `\n`, "\n")
		parsed, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, extErrors.Wrap(err, "Cannot parse Clerk public key")
		}
		key = parsed
	}

	return &Auth{
		Options: option,
		key:     key,
	}, nil
}
