package social

import (
	"context"
	"testing"

	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/identity/identitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func google(email string) domain.ProviderInfo {
	return domain.ProviderInfo{ProviderID: "google.com", Email: email}
}

func TestReconcile_NoLinkedProviderSignsUp(t *testing.T) {
	ids := identitytest.New()
	ids.AddUser("tok", domain.IdentityRecord{UID: "u1", Providers: []domain.ProviderInfo{google("new@example.com")}})
	svc := New(ids, nil)

	res, err := svc.Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSignup, res.Outcome)
	require.NotNil(t, res.SignupWithSocial)
	assert.True(t, *res.SignupWithSocial)
	assert.Nil(t, res.LoginWithSocial)

	rec, ok := ids.User("u1")
	require.True(t, ok)
	assert.Equal(t, "new@example.com", rec.Email)
	assert.Empty(t, ids.Deleted)
}

func TestReconcile_SingleProviderLogsIn(t *testing.T) {
	ids := identitytest.New()
	ids.AddUser("tok", domain.IdentityRecord{UID: "u1", Email: "ann@example.com", Providers: []domain.ProviderInfo{google("ann@example.com")}})
	svc := New(ids, nil)

	res, err := svc.Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, OutcomeLogin, res.Outcome)
	require.NotNil(t, res.LoginWithSocial)
	assert.True(t, *res.LoginWithSocial)
	assert.Nil(t, res.SignupWithSocial)
	assert.Empty(t, ids.Updated)
	assert.Empty(t, ids.Deleted)
}

func TestReconcile_MultipleProvidersDeletesRecord(t *testing.T) {
	ids := identitytest.New()
	ids.AddUser("", domain.IdentityRecord{
		UID:       "existing",
		Email:     "ann@example.com",
		Providers: []domain.ProviderInfo{google("ann@example.com"), {ProviderID: "password", Email: "ann@example.com"}},
	})
	ids.AddUser("tok", domain.IdentityRecord{UID: "dup", Providers: []domain.ProviderInfo{{ProviderID: "facebook.com", Email: "ann@example.com"}}})
	svc := New(ids, nil)

	res, err := svc.Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	require.NotNil(t, res.SignupWithSocial)
	assert.False(t, *res.SignupWithSocial)
	assert.Equal(t, []string{"dup"}, ids.Deleted)
	_, stillThere := ids.User("existing")
	assert.True(t, stillThere)
}

func TestReconcile_Errors(t *testing.T) {
	ids := identitytest.New()
	ids.AddUser("tok", domain.IdentityRecord{UID: "u1", Providers: []domain.ProviderInfo{google("new@example.com")}})
	ids.AddUser("no-email", domain.IdentityRecord{UID: "u2"})
	svc := New(ids, nil)

	_, err := svc.Reconcile(context.Background(), "bad-token")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Reconcile(context.Background(), "no-email")
	assert.ErrorIs(t, err, domain.ErrValidation)

	ids.FailOn("GetUserByEmail", domain.E("getUserByEmail", domain.ErrUpstream, nil))
	_, err = svc.Reconcile(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, ids.Updated, "lookup failure must not be treated as zero providers")

	ids.FailOn("GetUserByEmail", nil)
	ids.FailOn("UpdateUser", domain.E("updateUser", domain.ErrUpstream, nil))
	_, err = svc.Reconcile(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
