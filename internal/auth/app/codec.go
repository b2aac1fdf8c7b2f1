package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

// minSecretBytes matches the HS256 output size.
const minSecretBytes = 32

// InitCodec builds the single process-wide credential codec.
//
// In dev with no AUTH_SIGNING_SECRET an ephemeral secret is generated, so
// every credential becomes invalid when the process restarts.
func InitCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	secret := cfg.SigningSecret

	switch {
	case secret == "" && cfg.IsDev():
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
		secret = generated
		logger.Warn("AUTH_SIGNING_SECRET not set, using an ephemeral secret; credentials will not survive a restart")

	case secret == "":
		return nil, fmt.Errorf("%w: AUTH_SIGNING_SECRET", ErrConfigRequired)

	case len(secret) < minSecretBytes:
		logger.Warn("AUTH_SIGNING_SECRET is shorter than recommended",
			slog.Int("min_bytes", minSecretBytes),
		)
	}

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret: []byte(secret),
		Issuer: cfg.Issuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("credential codec ready",
		slog.String("issuer", codec.Issuer()),
		slog.Duration("ttl", codec.TTL()),
	)
	return codec, nil
}
