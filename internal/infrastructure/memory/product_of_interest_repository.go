package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

// ProductOfInterestRepository keeps interest records in a map keyed by
// the (cpf, salesProviderProductId) pair.
type ProductOfInterestRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.ProductOfInterest
}

func NewProductOfInterestRepository() *ProductOfInterestRepository {
	return &ProductOfInterestRepository{
		records: make(map[string]*entity.ProductOfInterest),
	}
}

func compositeKey(cpf string, productID int64) string {
	return fmt.Sprintf("%s/%d", cpf, productID)
}

func (r *ProductOfInterestRepository) ListByCpf(ctx context.Context, cpf string) ([]entity.ProductOfInterest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.ProductOfInterest
	for _, p := range r.records {
		if p.Cpf == cpf {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProductOfInterestRepository) FindByProductAndMinPrice(ctx context.Context, productID int64, price float64) ([]entity.ProductOfInterest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.ProductOfInterest
	for _, p := range r.records {
		if p.SalesProviderProductID == productID && p.MinPriceAlert >= price {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProductOfInterestRepository) Upsert(ctx context.Context, p *entity.ProductOfInterest) (*entity.ProductOfInterest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := compositeKey(p.Cpf, p.SalesProviderProductID)
	rec := *p
	if existing, ok := r.records[key]; ok {
		rec.ID = existing.ID
	} else {
		rec.ID = uuid.NewString()
	}
	r.records[key] = &rec
	cp := rec
	return &cp, nil
}

func (r *ProductOfInterestRepository) Delete(ctx context.Context, cpf string, productID int64) (*entity.ProductOfInterest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := compositeKey(cpf, productID)
	existing, ok := r.records[key]
	if !ok {
		return nil, &repository.NotFoundError{
			Kind: "product of interest",
			Key:  fmt.Sprintf("cpf: %s and salesProviderProductId: %d", cpf, productID),
		}
	}
	delete(r.records, key)
	cp := *existing
	return &cp, nil
}

var _ repository.ProductOfInterestRepository = (*ProductOfInterestRepository)(nil)
