package service

import (
	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

// TokenIssuer mints credentials for authenticated users. It shares the one
// process-wide codec with the verification gate.
type TokenIssuer struct {
	Codec *jwtx.Codec
}

func NewTokenIssuer(codec *jwtx.Codec) *TokenIssuer {
	return &TokenIssuer{Codec: codec}
}

// Issue signs a credential for u, valid from now for the codec's TTL.
func (i *TokenIssuer) Issue(u domain.User) (string, jwtx.Claims, error) {
	return i.Codec.Issue(IdentityFor(u))
}

// IdentityFor projects the claim-visible fields of a user.
func IdentityFor(u domain.User) jwtx.Identity {
	return jwtx.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
