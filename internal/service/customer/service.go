package customer

import (
	"context"
	"errors"
	"strings"

	"commercetools-gateway/internal/domain"
	"go.uber.org/zap"
)

type identityReader interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
	GetUser(ctx context.Context, uid string) (*domain.IdentityRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.IdentityRecord, error)
}

type customerPlatform interface {
	SignupCustomer(ctx context.Context, draft domain.CustomerDraft) (*domain.Customer, error)
	PasswordGrantToken(ctx context.Context, username, password string) (*domain.AccessToken, error)
}

// Service registers social identities as commerce customers and issues their sessions.
type Service struct {
	identity    identityReader
	platform    customerPlatform
	credentials CredentialScheme
	logger      *zap.Logger
}

func New(identity identityReader, platform customerPlatform, credentials CredentialScheme, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if credentials == nil {
		credentials = EmailPassword{}
	}
	return &Service{identity: identity, platform: platform, credentials: credentials, logger: logger}
}

// Register verifies idToken, signs its identity up as a commerce customer and returns
// a customer access token.
func (s *Service) Register(ctx context.Context, idToken string) (*domain.AccessToken, error) {
	rec, err := s.verifiedRecord(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.RegisterIdentity(ctx, *rec)
}

// RegisterIdentity signs rec up and exchanges the shadow credentials for a token. An
// account that already exists is signed in instead.
func (s *Service) RegisterIdentity(ctx context.Context, rec domain.IdentityRecord) (*domain.AccessToken, error) {
	const op = "registerCustomer"
	email := accountEmail(rec)
	if email == "" {
		return nil, domain.Invalid(op, "identity %s has no email", rec.UID)
	}
	password, err := s.credentials.Password(email)
	if err != nil {
		return nil, domain.E(op, domain.ErrValidation, err)
	}
	_, err = s.platform.SignupCustomer(ctx, domain.CustomerDraft{
		Email:     email,
		Password:  password,
		FirstName: rec.DisplayName,
		Phone:     rec.Phone,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		s.logger.Info("customer already registered", zap.String("uid", rec.UID), zap.String("email", email))
	case err != nil:
		return nil, err
	default:
		s.logger.Info("customer registered", zap.String("uid", rec.UID), zap.String("email", email), zap.String("scheme", s.credentials.Name()))
	}
	return s.platform.PasswordGrantToken(ctx, email, password)
}

// IssueToken signs an already registered identity in.
func (s *Service) IssueToken(ctx context.Context, idToken string) (*domain.AccessToken, error) {
	const op = "generateToken"
	rec, err := s.verifiedRecord(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email := accountEmail(*rec)
	if email == "" {
		return nil, domain.Invalid(op, "identity %s has no email", rec.UID)
	}
	password, err := s.credentials.Password(email)
	if err != nil {
		return nil, domain.E(op, domain.ErrValidation, err)
	}
	return s.platform.PasswordGrantToken(ctx, email, password)
}

// Exists reports whether an identity is registered under email or, failing that, phone.
func (s *Service) Exists(ctx context.Context, email, phone string) (bool, error) {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return false, domain.Invalid("verifyExistUser", "email or phone number is required")
	}
	if email != "" {
		_, err := s.identity.GetUserByEmail(ctx, email)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}
	if phone != "" {
		_, err := s.identity.GetUserByPhone(ctx, phone)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}
	return false, nil
}

func (s *Service) verifiedRecord(ctx context.Context, idToken string) (*domain.IdentityRecord, error) {
	uid, err := s.identity.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.identity.GetUser(ctx, uid)
}

func accountEmail(rec domain.IdentityRecord) string {
	if email := normalizeEmail(rec.Email); email != "" {
		return email
	}
	return normalizeEmail(rec.ProviderEmail())
}
