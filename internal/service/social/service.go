// Package social reconciles a freshly authenticated social login with the identity
// records already registered under the same email.
package social

import (
	"context"
	"errors"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/identity"
	"commercetools-gateway/internal/metrics"
	"go.uber.org/zap"
)

// Outcome names the reconciliation branch taken.
type Outcome string

const (
	// OutcomeSignup: no provider was linked to the email; the record adopted the provider email.
	OutcomeSignup Outcome = "signup"
	// OutcomeLogin: exactly one provider is linked; nothing changes.
	OutcomeLogin Outcome = "login"
	// OutcomeRejected: several providers share the email; the new record was deleted.
	OutcomeRejected Outcome = "rejected"
)

// Result carries the flags returned to the client. Exactly one flag is set.
type Result struct {
	Outcome          Outcome
	SignupWithSocial *bool
	LoginWithSocial  *bool
}

type Service struct {
	identity identity.Client
	logger   *zap.Logger
}

func New(identity identity.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{identity: identity, logger: logger}
}

// Reconcile verifies token and branches on how many providers are linked to the
// identity's provider email.
func (s *Service) Reconcile(ctx context.Context, token string) (*Result, error) {
	const op = "reconcileSocialIdentity"
	uid, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	rec, err := s.identity.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	email := rec.ProviderEmail()
	if email == "" {
		return nil, domain.Invalid(op, "identity %s has no provider email", uid)
	}
	count, err := s.providerCount(ctx, email)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("op", op), zap.String("uid", uid), zap.String("email", email), zap.Int("providers", count))
	var res *Result
	switch {
	case count == 0:
		if _, err := s.identity.UpdateUser(ctx, uid, identity.UserUpdate{Email: email}); err != nil {
			return nil, err
		}
		res = &Result{Outcome: OutcomeSignup, SignupWithSocial: boolPtr(true)}
	case count == 1:
		res = &Result{Outcome: OutcomeLogin, LoginWithSocial: boolPtr(true)}
	default:
		if err := s.identity.DeleteUser(ctx, uid); err != nil {
			return nil, err
		}
		res = &Result{Outcome: OutcomeRejected, SignupWithSocial: boolPtr(false)}
	}
	metrics.SocialOutcome(string(res.Outcome))
	log.Info("social identity reconciled", zap.String("outcome", string(res.Outcome)))
	return res, nil
}

// providerCount returns how many providers are linked to the record holding email.
// An unknown email counts as zero.
func (s *Service) providerCount(ctx context.Context, email string) (int, error) {
	rec, err := s.identity.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(rec.Providers), nil
}

func boolPtr(v bool) *bool { return &v }
