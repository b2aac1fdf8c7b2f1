package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("jwtx: signing secret must not be empty")
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// CodecOptions configures a Codec. Secret is copied, so the caller may reuse
// or wipe its slice afterwards.
type CodecOptions struct {
	Secret []byte
	Issuer string        // Optional: enforced on decode when set
	TTL    time.Duration // Optional: defaults to DefaultTokenTTL
	Now    func() time.Time
}

// Codec signs and verifies HS256 credentials with a single process-wide
// secret. It holds no mutable state after construction and is safe for
// concurrent use.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec validates opts and returns a ready Codec.
func NewCodec(opts CodecOptions) (*Codec, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	secret := make([]byte, len(opts.Secret))
	copy(secret, opts.Secret)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(opts.Now),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &Codec{
		secret: secret,
		issuer: opts.Issuer,
		ttl:    opts.TTL,
		now:    opts.Now,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// TTL is the lifetime applied by Issue.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issuer is the iss claim stamped by Issue.
func (c *Codec) Issuer() string { return c.issuer }

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time { return c.now() }

// Issue builds claims for id at the current time and signs them.
func (c *Codec) Issue(id Identity) (string, Claims, error) {
	claims := NewClaims(id, c.issuer, c.ttl, c.now())
	token, err := c.Encode(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Encode signs claims. The same claims always produce the same token.
func (c *Codec) Encode(claims Claims) (string, error) {
	if err := claims.ValidateLifetime(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims. Failures wrap exactly one of
// ErrMalformed, ErrInvalidSig, ErrExpired or ErrInvalidClaim. An expired but
// otherwise valid token still returns its claims alongside ErrExpired.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims

	_, err := c.parser.ParseWithClaims(token, &claims, c.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
		case onlyExpiredError(err):
			return claims, fmt.Errorf("%w: %w", ErrExpired, err)
		default:
			return Claims{}, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
		}
	}

	if err := claims.ValidateLifetime(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}

// onlyExpiredError is true when the parser rejected the token for expiry and
// nothing else.
func onlyExpiredError(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	return !errors.Is(err, jwt.ErrTokenNotValidYet) &&
		!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
		!errors.Is(err, jwt.ErrTokenInvalidAudience) &&
		!errors.Is(err, jwt.ErrTokenRequiredClaimMissing) &&
		!errors.Is(err, jwt.ErrTokenUsedBeforeIssued)
}
