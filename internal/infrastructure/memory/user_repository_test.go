package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

func newUser(email, cpf string) *entity.User {
	return &entity.User{
		Email:    email,
		Password: "hash",
		Cpf:      cpf,
		Role:     entity.RoleUser,
		Enabled:  true,
	}
}

func TestCreateRejectsDuplicateEmailRegardlessOfOrder(t *testing.T) {
	ctx := context.Background()

	pairs := [][2]*entity.User{
		{newUser("a@example.com", "111"), newUser("a@example.com", "222")},
		{newUser("a@example.com", "222"), newUser("a@example.com", "111")},
	}
	for _, pair := range pairs {
		repo := NewUserRepository()
		_, err := repo.Create(ctx, pair[0])
		require.NoError(t, err)

		_, err = repo.Create(ctx, pair[1])
		require.Error(t, err)
		var aerr *repository.AlreadyExistsError
		require.ErrorAs(t, err, &aerr)
		assert.True(t, aerr.Has("email"))
		assert.False(t, aerr.Has("cpf"))
	}
}

func TestCreateReportsCombinedConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.Create(ctx, newUser("a@example.com", "111"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("b@example.com", "222"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("a@example.com", "222"))
	var aerr *repository.AlreadyExistsError
	require.ErrorAs(t, err, &aerr)
	assert.True(t, aerr.Has("email"))
	assert.True(t, aerr.Has("cpf"))
	assert.Len(t, aerr.Conflicts, 2)
}

func TestUpdateSelfNeverConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, newUser("a@example.com", "111"))
	require.NoError(t, err)

	same := newUser("a@example.com", "111")
	updated, err := repo.Update(ctx, same, "a@example.com", repository.UpdateOptions{TouchLastUpdate: true})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdateConflictsWithAnotherRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.Create(ctx, newUser("a@example.com", "111"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("b@example.com", "222"))
	require.NoError(t, err)

	hijack := newUser("a@example.com", "222")
	_, err = repo.Update(ctx, hijack, "b@example.com", repository.UpdateOptions{})
	var aerr *repository.AlreadyExistsError
	require.ErrorAs(t, err, &aerr)
	assert.True(t, aerr.Has("email"))
}

func TestLastFcmRegisterMovesOnlyOnTokenChange(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.Now = func() time.Time { return current }

	u := newUser("a@example.com", "111")
	u.FcmRegID = "tok1"
	created, err := repo.Create(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, current, created.LastFcmRegister)

	// same token: timestamp stays put
	current = current.Add(time.Hour)
	same := newUser("a@example.com", "111")
	same.FcmRegID = "tok1"
	updated, err := repo.Update(ctx, same, "a@example.com", repository.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, created.LastFcmRegister, updated.LastFcmRegister)

	// new token value
	current = current.Add(time.Hour)
	rotated := newUser("a@example.com", "111")
	rotated.FcmRegID = "tok2"
	updated, err = repo.Update(ctx, rotated, "a@example.com", repository.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, current, updated.LastFcmRegister)

	// value -> absent counts as a change too
	current = current.Add(time.Hour)
	cleared := newUser("a@example.com", "111")
	updated, err = repo.Update(ctx, cleared, "a@example.com", repository.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, current, updated.LastFcmRegister)

	// absent -> absent is not a change
	current = current.Add(time.Hour)
	stillCleared := newUser("a@example.com", "111")
	again, err := repo.Update(ctx, stillCleared, "a@example.com", repository.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, updated.LastFcmRegister, again.LastFcmRegister)
}

func TestUpdateEmptyPasswordKeepsStoredHash(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := newUser("a@example.com", "111")
	u.Password = "stored-hash"
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	unchanged := newUser("a@example.com", "111")
	unchanged.Password = ""
	updated, err := repo.Update(ctx, unchanged, "a@example.com", repository.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "stored-hash", updated.Password)
}

func TestUpdateOptionsControlTimestamps(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	current := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.Now = func() time.Time { return current }

	_, err := repo.Create(ctx, newUser("a@example.com", "111"))
	require.NoError(t, err)
	createdAt := current

	// a login write moves lastLogin but not lastUpdate
	current = current.Add(time.Minute)
	loginAt := current
	updated, err := repo.Update(ctx, newUser("a@example.com", "111"), "a@example.com", repository.UpdateOptions{LastLogin: loginAt})
	require.NoError(t, err)
	assert.Equal(t, loginAt, updated.LastLogin)
	assert.Equal(t, createdAt, updated.LastUpdate)

	// a profile write moves lastUpdate but keeps lastLogin
	current = current.Add(time.Minute)
	updated, err = repo.Update(ctx, newUser("a@example.com", "111"), "a@example.com", repository.UpdateOptions{TouchLastUpdate: true})
	require.NoError(t, err)
	assert.Equal(t, loginAt, updated.LastLogin)
	assert.Equal(t, current, updated.LastUpdate)
}

func TestDeleteMissingCpfReturnsNotFound(t *testing.T) {
	repo := NewUserRepository()

	_, err := repo.DeleteByCpf(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
}

func TestListSortsByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	for _, u := range []*entity.User{
		newUser("charlie@example.com", "333"),
		newUser("alice@example.com", "111"),
		newUser("bob@example.com", "222"),
	} {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)
	assert.Equal(t, "charlie@example.com", users[2].Email)
}
