package customer

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const minSecretLen = 32

// Scheme names accepted by SHADOW_PASSWORD_SCHEME.
const (
	SchemeEmail   = "email"
	SchemeDerived = "derived"
)

// CredentialScheme derives the password of the shadow commerce account that backs a
// social identity. Replacing it changes every derived password, so existing accounts
// keep working only under the scheme they were created with.
type CredentialScheme interface {
	Name() string
	Password(email string) (string, error)
}

// EmailPassword uses the email itself as the password. Anyone who knows a shopper's
// email can sign in as them; it exists for accounts created before DerivedPassword.
type EmailPassword struct{}

func (EmailPassword) Name() string { return SchemeEmail }

func (EmailPassword) Password(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("email required")
	}
	return email, nil
}

// DerivedPassword derives a per-email password with HKDF-SHA256 under a server secret.
type DerivedPassword struct {
	secret []byte
}

func NewDerivedPassword(secret string) (DerivedPassword, error) {
	if err := validateSecret(secret, minSecretLen); err != nil {
		return DerivedPassword{}, err
	}
	return DerivedPassword{secret: []byte(secret)}, nil
}

func (DerivedPassword) Name() string { return SchemeDerived }

func (d DerivedPassword) Password(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("email required")
	}
	r := hkdf.New(sha256.New, d.secret, nil, []byte("shadow-password:"+email))
	buf := make([]byte, 32)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("derive password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSecret(s string, min int) error {
	if len(strings.TrimSpace(s)) < min {
		return fmt.Errorf("shadow password secret must be at least %d characters", min)
	}
	return nil
}
