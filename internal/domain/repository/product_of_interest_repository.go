package repository

import (
	"context"

	"github.com/salestrack/messenger-service/internal/domain/entity"
)

// ProductOfInterestRepository stores price-drop subscriptions keyed on
// the (cpf, salesProviderProductId) pair.
type ProductOfInterestRepository interface {
	ListByCpf(ctx context.Context, cpf string) ([]entity.ProductOfInterest, error)
	// FindByProductAndMinPrice returns every record for the product
	// whose minPriceAlert is greater than or equal to price, i.e. the
	// subscriptions whose threshold the new price has reached or crossed.
	FindByProductAndMinPrice(ctx context.Context, productID int64, price float64) ([]entity.ProductOfInterest, error)
	// Upsert creates the record or overwrites the one already stored
	// under the same (cpf, salesProviderProductId) pair.
	Upsert(ctx context.Context, p *entity.ProductOfInterest) (*entity.ProductOfInterest, error)
	// Delete removes by the composite key and returns the removed
	// record, or a NotFoundError.
	Delete(ctx context.Context, cpf string, productID int64) (*entity.ProductOfInterest, error)
}
