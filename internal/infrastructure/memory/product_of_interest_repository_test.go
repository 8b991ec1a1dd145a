package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

func interest(cpf string, productID int64, minPrice float64) *entity.ProductOfInterest {
	return &entity.ProductOfInterest{
		Cpf:                    cpf,
		SalesProviderProductID: productID,
		MinPriceAlert:          minPrice,
	}
}

func TestFindByProductAndMinPrice(t *testing.T) {
	ctx := context.Background()
	repo := NewProductOfInterestRepository()

	for _, p := range []*entity.ProductOfInterest{
		interest("111", 7, 100),
		interest("222", 7, 50),
		interest("333", 7, 200),
		interest("444", 8, 500), // other product, never matches
	} {
		_, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
	}

	matches, err := repo.FindByProductAndMinPrice(ctx, 7, 80)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	cpfs := []string{matches[0].Cpf, matches[1].Cpf}
	assert.ElementsMatch(t, []string{"111", "333"}, cpfs)
}

func TestFindByProductAndMinPriceIncludesExactThreshold(t *testing.T) {
	ctx := context.Background()
	repo := NewProductOfInterestRepository()

	_, err := repo.Upsert(ctx, interest("111", 7, 80))
	require.NoError(t, err)

	matches, err := repo.FindByProductAndMinPrice(ctx, 7, 80)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestUpsertKeepsIDOnSameCompositeKey(t *testing.T) {
	ctx := context.Background()
	repo := NewProductOfInterestRepository()

	first, err := repo.Upsert(ctx, interest("111", 7, 100))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := repo.Upsert(ctx, interest("111", 7, 250))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 250.0, second.MinPriceAlert)

	all, err := repo.ListByCpf(ctx, "111")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteMissingCompositeKeyReturnsNotFound(t *testing.T) {
	repo := NewProductOfInterestRepository()

	_, err := repo.Delete(context.Background(), "111", 7)
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
}

func TestDeleteRemovesOnlyTheTargetRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewProductOfInterestRepository()

	_, err := repo.Upsert(ctx, interest("111", 7, 100))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, interest("111", 8, 100))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "111", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted.SalesProviderProductID)

	remaining, err := repo.ListByCpf(ctx, "111")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(8), remaining[0].SalesProviderProductID)
}
