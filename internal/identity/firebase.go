package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/metrics"
)

const platform = "identity"

// authAPI is the subset of *auth.Client used here.
type authAPI interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	GetUserByPhoneNumber(ctx context.Context, phone string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// Firebase implements Client on top of Firebase Authentication.
type Firebase struct {
	auth   authAPI
	logger *zap.Logger
}

var _ Client = (*Firebase)(nil)

// NewFirebase initialises a Firebase app and its auth client. An empty credentials file
// falls back to application default credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string, logger *zap.Logger) (*Firebase, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return newFirebase(client, logger), nil
}

func newFirebase(api authAPI, logger *zap.Logger) *Firebase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Firebase{auth: api, logger: logger}
}

func (f *Firebase) VerifyToken(ctx context.Context, idToken string) (uid string, err error) {
	const op = "verifyToken"
	defer f.observe(op, time.Now(), &err)
	if strings.TrimSpace(idToken) == "" {
		return "", domain.E(op, domain.ErrUnauthenticated, errors.New("missing token"))
	}
	tok, err := f.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.E(op, domain.ErrUpstream, err)
		}
		return "", domain.E(op, domain.ErrUnauthenticated, err)
	}
	if tok.UID == "" {
		return "", domain.E(op, domain.ErrUnauthenticated, errors.New("token has no uid"))
	}
	return tok.UID, nil
}

func (f *Firebase) GetUser(ctx context.Context, uid string) (rec *domain.IdentityRecord, err error) {
	const op = "getUser"
	defer f.observe(op, time.Now(), &err)
	u, err := f.auth.GetUser(ctx, uid)
	if err != nil {
		return nil, classify(op, err)
	}
	return toRecord(u), nil
}

func (f *Firebase) GetUserByEmail(ctx context.Context, email string) (rec *domain.IdentityRecord, err error) {
	const op = "getUserByEmail"
	defer f.observe(op, time.Now(), &err)
	u, err := f.auth.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, classify(op, err)
	}
	return toRecord(u), nil
}

func (f *Firebase) GetUserByPhone(ctx context.Context, phone string) (rec *domain.IdentityRecord, err error) {
	const op = "getUserByPhone"
	defer f.observe(op, time.Now(), &err)
	u, err := f.auth.GetUserByPhoneNumber(ctx, phone)
	if err != nil {
		return nil, classify(op, err)
	}
	return toRecord(u), nil
}

func (f *Firebase) UpdateUser(ctx context.Context, uid string, update UserUpdate) (rec *domain.IdentityRecord, err error) {
	const op = "updateUser"
	defer f.observe(op, time.Now(), &err)
	params := &auth.UserToUpdate{}
	if update.Email != "" {
		params = params.Email(update.Email)
	}
	u, err := f.auth.UpdateUser(ctx, uid, params)
	if err != nil {
		return nil, classify(op, err)
	}
	return toRecord(u), nil
}

func (f *Firebase) DeleteUser(ctx context.Context, uid string) (err error) {
	const op = "deleteUser"
	defer f.observe(op, time.Now(), &err)
	if err := f.auth.DeleteUser(ctx, uid); err != nil {
		return classify(op, err)
	}
	return nil
}

func (f *Firebase) observe(op string, start time.Time, errp *error) {
	err := *errp
	metrics.ObserveUpstream(platform, op, err, time.Since(start))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		f.logger.Warn("identity call failed", zap.String("op", op), zap.Error(err))
	}
}

func classify(op string, err error) error {
	switch {
	case auth.IsUserNotFound(err):
		return domain.E(op, domain.ErrNotFound, err)
	case auth.IsEmailAlreadyExists(err), auth.IsPhoneNumberAlreadyExists(err):
		return domain.E(op, domain.ErrAlreadyExists, err)
	case auth.IsInvalidEmail(err):
		return domain.E(op, domain.ErrValidation, err)
	}
	return domain.E(op, domain.ErrUpstream, err)
}

func toRecord(u *auth.UserRecord) *domain.IdentityRecord {
	rec := &domain.IdentityRecord{}
	if u == nil {
		return rec
	}
	if u.UserInfo != nil {
		rec.UID = u.UID
		rec.Email = u.Email
		rec.Phone = u.PhoneNumber
		rec.DisplayName = u.DisplayName
	}
	for _, p := range u.ProviderUserInfo {
		if p == nil {
			continue
		}
		rec.Providers = append(rec.Providers, domain.ProviderInfo{ProviderID: p.ProviderID, UID: p.UID, Email: p.Email})
	}
	return rec
}
