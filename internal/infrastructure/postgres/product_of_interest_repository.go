package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

const poiColumns = `id, cpf, sales_provider_user_id, sales_provider_product_id, min_price_alert`

// ProductOfInterestRepository is the pgx-backed store for price-drop
// subscriptions. The unique index on (cpf, sales_provider_product_id)
// makes the upsert a single conditional write.
type ProductOfInterestRepository struct {
	pool *pgxpool.Pool
}

func NewProductOfInterestRepository(pool *pgxpool.Pool) *ProductOfInterestRepository {
	return &ProductOfInterestRepository{pool: pool}
}

func (r *ProductOfInterestRepository) ListByCpf(ctx context.Context, cpf string) ([]entity.ProductOfInterest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+poiColumns+` FROM products_of_interest WHERE cpf = $1`, cpf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterests(rows)
}

func (r *ProductOfInterestRepository) FindByProductAndMinPrice(ctx context.Context, productID int64, price float64) ([]entity.ProductOfInterest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM products_of_interest
		WHERE sales_provider_product_id = $1 AND min_price_alert >= $2
	`, productID, price)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterests(rows)
}

func (r *ProductOfInterestRepository) Upsert(ctx context.Context, p *entity.ProductOfInterest) (*entity.ProductOfInterest, error) {
	rec := *p
	rec.ID = uuid.NewString()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO products_of_interest (id, cpf, sales_provider_user_id, sales_provider_product_id, min_price_alert)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cpf, sales_provider_product_id) DO UPDATE
		SET sales_provider_user_id = EXCLUDED.sales_provider_user_id,
			min_price_alert = EXCLUDED.min_price_alert
		RETURNING id
	`, rec.ID, rec.Cpf, rec.SalesProviderUserID, rec.SalesProviderProductID, rec.MinPriceAlert)
	if err := row.Scan(&rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProductOfInterestRepository) Delete(ctx context.Context, cpf string, productID int64) (*entity.ProductOfInterest, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM products_of_interest
		WHERE cpf = $1 AND sales_provider_product_id = $2
		RETURNING `+poiColumns+`
	`, cpf, productID)

	p, err := scanInterest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Kind: "product of interest",
				Key:  fmt.Sprintf("cpf: %s and salesProviderProductId: %d", cpf, productID),
			}
		}
		return nil, err
	}
	return p, nil
}

func collectInterests(rows pgx.Rows) ([]entity.ProductOfInterest, error) {
	var out []entity.ProductOfInterest
	for rows.Next() {
		p, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanInterest(row pgx.Row) (*entity.ProductOfInterest, error) {
	var p entity.ProductOfInterest
	if err := row.Scan(&p.ID, &p.Cpf, &p.SalesProviderUserID, &p.SalesProviderProductID, &p.MinPriceAlert); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ repository.ProductOfInterestRepository = (*ProductOfInterestRepository)(nil)
