package application

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/internal/infrastructure/memory"
	"github.com/salestrack/messenger-service/internal/infrastructure/throttle"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

const (
	testAdminEmail    = "admin@admin.com.br"
	testAdminPassword = "admin"
)

// countingUsers wraps a repository and counts Update calls, so the
// throttle tests can observe how many store writes a login produced.
type countingUsers struct {
	repository.UserRepository
	updates int
}

func (c *countingUsers) Update(ctx context.Context, u *entity.User, targetEmail string, opts repository.UpdateOptions) (*entity.User, error) {
	c.updates++
	return c.UserRepository.Update(ctx, u, targetEmail, opts)
}

// brokenCache always fails, standing in for an unavailable backend.
type brokenCache struct{}

func (brokenCache) LastLogin(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("cache unavailable")
}

func (brokenCache) SetLastLogin(context.Context, string, time.Time) error {
	return errors.New("cache unavailable")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService() (*DirectoryService, *countingUsers) {
	users := &countingUsers{UserRepository: memory.NewUserRepository()}
	svc := NewDirectoryService(
		users,
		memory.NewProductOfInterestRepository(),
		throttle.NewMemory(time.Minute),
		quietLogger(),
		testAdminEmail,
		testAdminPassword,
	)
	return svc, users
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.BootstrapAdmin(ctx))
	require.NoError(t, svc.BootstrapAdmin(ctx))

	admin, err := svc.GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.True(t, admin.Enabled)
	assert.True(t, helpers.CompareHashAndPassword(admin.Password, testAdminPassword))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBootstrapAdminRestoresRoleWithoutRehash(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	require.NoError(t, svc.BootstrapAdmin(ctx))

	admin, err := svc.GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)
	storedHash := admin.Password

	demoted := *admin
	demoted.Role = entity.RoleUser
	demoted.Password = ""
	_, err = svc.Users.Update(ctx, &demoted, testAdminEmail, repository.UpdateOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.BootstrapAdmin(ctx))

	restored, err := svc.GetByEmail(ctx, testAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, restored.Role)
	assert.Equal(t, storedHash, restored.Password)
}

func TestRegisterRequiresPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &entity.User{
		Email:   "a@example.com",
		Cpf:     "111",
		Role:    entity.RoleUser,
		Enabled: true,
	})
	require.Error(t, err)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), &entity.User{
		Email:    "a@example.com",
		Password: "secret",
		Cpf:      "111",
		Role:     entity.RoleUser,
		Enabled:  true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "secret"))
}

func TestUpdateForcesRoleForNonAdminCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)

	escalated := &entity.User{
		Email: "a@example.com", Cpf: "111",
		Role: entity.RoleAdmin, Enabled: true,
	}
	updated, err := svc.Update(ctx, escalated, "a@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, updated.Role)

	promoted, err := svc.Update(ctx, escalated, "a@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
}

func TestUpdateEmptyPasswordMeansUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)

	noPassword := &entity.User{
		Email: "a@example.com", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	}
	updated, err := svc.Update(ctx, noPassword, "a@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, created.Password, updated.Password)

	newPassword := &entity.User{
		Email: "a@example.com", Password: "rotated", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	}
	updated, err = svc.Update(ctx, newPassword, "a@example.com", false)
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(updated.Password, "rotated"))
}

func TestAuthenticateRejectsBadCredentialsAndDisabled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &entity.User{
		Email: "off@example.com", Password: "secret", Cpf: "222",
		Role: entity.RoleUser, Enabled: false,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "off@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.Authenticate(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestRecordLoginSuppressesWritesInsideWindow(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService()
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.Now = func() time.Time { return current }

	created, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)
	users.updates = 0

	// 10 logins spread over 5 seconds: only the first writes
	for i := 0; i < 10; i++ {
		svc.RecordLogin(ctx, created)
		current = current.Add(500 * time.Millisecond)
	}
	assert.Equal(t, 1, users.updates)

	// a login past the window writes again
	current = current.Add(31 * time.Second)
	svc.RecordLogin(ctx, created)
	assert.Equal(t, 2, users.updates)
}

func TestRecordLoginWritesThroughWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService()
	svc.Throttle = brokenCache{}
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.Now = func() time.Time { return current }

	created, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)
	users.updates = 0

	for i := 0; i < 3; i++ {
		svc.RecordLogin(ctx, created)
		current = current.Add(time.Second)
	}
	assert.Equal(t, 3, users.updates)
}

func TestRecordLoginDoesNotTouchLastUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)

	svc.RecordLogin(ctx, created)

	after, err := svc.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, after.LastLogin.IsZero())
	assert.Equal(t, created.LastUpdate, after.LastUpdate)
	assert.Equal(t, created.Password, after.Password)
}

func TestCanActOn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)

	admin := Principal{Email: testAdminEmail, Role: entity.RoleAdmin}
	owner := Principal{Email: "a@example.com", Role: entity.RoleUser}
	other := Principal{Email: "b@example.com", Role: entity.RoleUser}

	assert.True(t, svc.CanActOn(ctx, admin, "whatever"))
	assert.True(t, svc.CanActOn(ctx, owner, "a@example.com"))
	assert.True(t, svc.CanActOn(ctx, owner, "111"))
	assert.False(t, svc.CanActOn(ctx, other, "a@example.com"))
	assert.False(t, svc.CanActOn(ctx, other, "111"))
}

func TestSaveInterestRequiresExistingOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.SaveInterest(ctx, &entity.ProductOfInterest{
		Cpf:                    "999",
		SalesProviderProductID: 7,
		MinPriceAlert:          100,
	})
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
}

func TestDeleteUserDoesNotCascadeInterests(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, &entity.User{
		Email: "a@example.com", Password: "secret", Cpf: "111",
		Role: entity.RoleUser, Enabled: true,
	})
	require.NoError(t, err)
	_, err = svc.SaveInterest(ctx, &entity.ProductOfInterest{
		Cpf:                    "111",
		SalesProviderProductID: 7,
		MinPriceAlert:          100,
	})
	require.NoError(t, err)

	_, err = svc.DeleteByCpf(ctx, "111")
	require.NoError(t, err)

	// known inconsistency: the subscription survives its owner
	orphaned, err := svc.Interests.ListByCpf(ctx, "111")
	require.NoError(t, err)
	assert.Len(t, orphaned, 1)
}
