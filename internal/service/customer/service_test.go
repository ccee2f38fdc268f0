package customer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"commercetools-gateway/internal/commerce/commercetest"
	"commercetools-gateway/internal/domain"
	"commercetools-gateway/internal/identity/identitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newFixture(t *testing.T, scheme CredentialScheme) (*Service, *identitytest.Fake, *commercetest.Platform) {
	t.Helper()
	ids := identitytest.New()
	ids.AddUser("id-token", domain.IdentityRecord{
		UID:         "u1",
		Email:       "Ann@Example.com",
		Phone:       "+15550100",
		DisplayName: "Ann",
		Providers:   []domain.ProviderInfo{{ProviderID: "google.com", Email: "ann@example.com"}},
	})
	platform := commercetest.New()
	return New(ids, platform, scheme, nil), ids, platform
}

func TestRegister_SignsUpAndIssuesToken(t *testing.T) {
	svc, _, platform := newFixture(t, EmailPassword{})

	tok, err := svc.Register(context.Background(), "id-token")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	c, password, ok := platform.Customer("ann@example.com")
	require.True(t, ok)
	assert.Equal(t, "Ann", c.FirstName)
	assert.Equal(t, "+15550100", c.Phone)
	assert.Equal(t, "ann@example.com", password)
}

func TestRegister_DerivedPasswordNeverEqualsEmail(t *testing.T) {
	scheme, err := NewDerivedPassword(testSecret)
	require.NoError(t, err)
	svc, _, platform := newFixture(t, scheme)

	_, err = svc.Register(context.Background(), "id-token")
	require.NoError(t, err)
	_, password, ok := platform.Customer("ann@example.com")
	require.True(t, ok)
	assert.NotEqual(t, "ann@example.com", password)

	// A second registration signs in with the same derived password.
	tok, err := svc.Register(context.Background(), "id-token")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
}

func TestRegister_InvalidToken(t *testing.T) {
	svc, _, platform := newFixture(t, EmailPassword{})

	_, err := svc.Register(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.NotContains(t, platform.Calls(), "signupCustomer")
}

func TestRegister_SignupFailurePropagates(t *testing.T) {
	svc, _, platform := newFixture(t, EmailPassword{})
	platform.FailOn("signupCustomer", domain.E("signupCustomer", domain.ErrUpstream, nil))

	_, err := svc.Register(context.Background(), "id-token")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotContains(t, platform.Calls(), "passwordGrantToken")
}

func TestRegisterIdentity_RequiresEmail(t *testing.T) {
	svc, _, _ := newFixture(t, EmailPassword{})
	_, err := svc.RegisterIdentity(context.Background(), domain.IdentityRecord{UID: "u9"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIssueToken(t *testing.T) {
	svc, _, _ := newFixture(t, EmailPassword{})

	_, err := svc.IssueToken(context.Background(), "id-token")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "not registered yet")

	_, err = svc.Register(context.Background(), "id-token")
	require.NoError(t, err)
	tok, err := svc.IssueToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestExists(t *testing.T) {
	svc, ids, _ := newFixture(t, EmailPassword{})
	ctx := context.Background()

	ok, err := svc.Exists(ctx, "Ann@Example.com", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "nobody@example.com", "+15550100")
	require.NoError(t, err)
	assert.True(t, ok, "falls back to phone")

	ok, err = svc.Exists(ctx, "nobody@example.com", "+10000000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Exists(ctx, " ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	ids.FailOn("GetUserByEmail", domain.E("getUserByEmail", domain.ErrUpstream, errors.New("quota")))
	_, err = svc.Exists(ctx, "nobody@example.com", "+15550100")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestDerivedPassword(t *testing.T) {
	_, err := NewDerivedPassword("short")
	assert.Error(t, err)

	a, err := NewDerivedPassword(testSecret)
	require.NoError(t, err)
	b, err := NewDerivedPassword(strings.ToUpper(testSecret))
	require.NoError(t, err)

	p1, err := a.Password("ann@example.com")
	require.NoError(t, err)
	p2, err := a.Password("  ANN@example.com ")
	require.NoError(t, err)
	p3, err := a.Password("bob@example.com")
	require.NoError(t, err)
	p4, err := b.Password("ann@example.com")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, p3)
	assert.NotEqual(t, p1, p4)
	assert.Len(t, p1, 43)

	_, err = a.Password("")
	assert.Error(t, err)
}
