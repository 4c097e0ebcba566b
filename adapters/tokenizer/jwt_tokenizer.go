package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

const audienceSession = "auth:session"

// JWTIssuer implements the CredentialIssuer interface using HS256 JWTs
// signed with a process-wide secret.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates a new JWT issuer. An empty secret is a
// configuration fault.
func NewJWTIssuer(secret []byte) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, core.ErrConfiguration
	}
	return &JWTIssuer{secret: secret, now: time.Now}, nil
}

var _ ports.CredentialIssuer = (*JWTIssuer)(nil)

// Issue mints a session token for a verified identity. The expiry is a
// fixed 24-hour window from issuance.
func (j *JWTIssuer) Issue(address common.Address, username string) (string, error) {
	now := j.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address.Hex(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(core.CredentialTTL)),
			Audience:  jwt.ClaimStrings{audienceSession},
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(j.secret)
	if err != nil {
		// HMAC signing only fails on misconfiguration.
		return "", fmt.Errorf("%w: signing session token: %v", core.ErrConfiguration, err)
	}

	return signed, nil
}

// Validate parses and verifies a session token. A token whose expiry
// instant has been reached is already invalid.
func (j *JWTIssuer) Validate(tokenStr string) (*core.Credential, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.ErrCredentialSignature
		}
		return j.secret, nil
	}, jwt.WithAudience(audienceSession), jwt.WithTimeFunc(func() time.Time { return j.now() }))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, core.ErrCredentialSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, core.ErrCredentialExpired
		default:
			return nil, core.ErrCredentialMalformed
		}
	}

	if !token.Valid {
		return nil, core.ErrCredentialMalformed
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrCredentialMalformed
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, core.ErrCredentialMalformed
	}

	// The expiry instant itself is invalid.
	if !j.now().Before(claims.ExpiresAt.Time) {
		return nil, core.ErrCredentialExpired
	}

	return &core.Credential{
		Address:   common.HexToAddress(claims.Subject),
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
