package app

import (
	"fmt"
	"log/slog"

	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/pkg/cryptox"
	"github.com/healthmate/server/pkg/jwtx"
)

// InitTokenIssuer builds the access token issuer for the configured algorithm.
//
// Supported algorithms:
//   - "HS256": a shared secret from AUTH_SIGNING_KEY. Tokens survive restarts
//     as long as the secret does.
//   - "EdDSA": an Ed25519 key read from AUTH_SIGNING_KEY_FILE. A new key is
//     generated when the file is missing, which invalidates earlier tokens.
func InitTokenIssuer(cfg Config, logger *slog.Logger) (*service.TokenIssuer, error) {
	opts := jwtx.VerifyOptions{Issuer: cfg.Issuer}

	var (
		signer   jwtx.Signer
		verifier jwtx.Verifier
	)

	switch cfg.Algorithm {
	case AlgorithmEdDSA:
		pemKey, generated, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		if generated {
			logger.Warn("generated new signing key, existing tokens are now invalid", "path", cfg.SigningKeyFile)
		}

		s, err := jwtx.NewSignerEdDSA("healthmate-eddsa", pemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create EdDSA signer: %w", err)
		}
		eddsa, ok := s.(*jwtx.EdDSASigner)
		if !ok {
			return nil, fmt.Errorf("unexpected EdDSA signer type %T", s)
		}
		signer = s
		verifier = jwtx.NewVerifierEdDSA(eddsa.PublicKey(), opts)

	case AlgorithmHS256:
		s, err := jwtx.NewSignerHS256("healthmate-hs256", []byte(cfg.SigningKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create HS256 signer: %w", err)
		}
		signer = s
		verifier = jwtx.NewVerifierHS256([]byte(cfg.SigningKey), opts)

	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	logger.Info("token issuer ready", "algorithm", signer.Alg(), "issuer", cfg.Issuer, "ttl", cfg.TokenTTL)

	return &service.TokenIssuer{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   cfg.Issuer,
		TTL:      cfg.TokenTTL,
	}, nil
}
