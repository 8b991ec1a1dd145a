package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

const userColumns = `id, email, password_hash, cpf, role, fcm_reg_id,
	sales_provider_user_id, crm_provider_user_id, enabled,
	last_login, last_fcm_register, last_update`

// UserRepository is the pgx-backed uniqueness-checked store for users.
//
// The email/cpf check and the subsequent write are separate statements,
// so two concurrent creations can both pass the check; the unique
// indexes on users(email) and users(cpf) are the backstop that turns
// the loser of that race into a constraint violation instead of a
// duplicate row.
type UserRepository struct {
	pool *pgxpool.Pool

	// Now supplies server-assigned timestamps; defaults to time.Now.
	Now func() time.Time
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, Now: time.Now}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	return r.getBy(ctx, "cpf", cpf)
}

func (r *UserRepository) getBy(ctx context.Context, field, value string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+field+` = $1`, value)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{Kind: "user", Key: field + ": " + value}
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := r.checkUnique(ctx, u); err != nil {
		return nil, err
	}

	now := r.Now()
	rec := *u
	rec.ID = uuid.NewString()
	rec.LastUpdate = now
	if rec.FcmRegID != "" {
		rec.LastFcmRegister = now
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, cpf, role, fcm_reg_id,
			sales_provider_user_id, crm_provider_user_id, enabled,
			last_login, last_fcm_register, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.Email, rec.Password, rec.Cpf, string(rec.Role), rec.FcmRegID,
		rec.SalesProviderUserID, rec.CrmProviderUserID, rec.Enabled,
		nullTime(rec.LastLogin), nullTime(rec.LastFcmRegister), nullTime(rec.LastUpdate))
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User, targetEmail string, opts repository.UpdateOptions) (*entity.User, error) {
	existing, err := r.GetByEmail(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	candidate := *u
	candidate.ID = existing.ID
	if err := r.checkUnique(ctx, &candidate); err != nil {
		return nil, err
	}

	merged := mergeUser(existing, &candidate, opts, r.Now())

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, cpf = $3, role = $4, fcm_reg_id = $5,
			sales_provider_user_id = $6, crm_provider_user_id = $7, enabled = $8,
			last_login = $9, last_fcm_register = $10, last_update = $11
		WHERE id = $12
	`, merged.Email, merged.Password, merged.Cpf, string(merged.Role), merged.FcmRegID,
		merged.SalesProviderUserID, merged.CrmProviderUserID, merged.Enabled,
		nullTime(merged.LastLogin), nullTime(merged.LastFcmRegister), nullTime(merged.LastUpdate),
		merged.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, &repository.NotFoundError{Kind: "user", Key: "email: " + targetEmail}
	}
	return merged, nil
}

func (r *UserRepository) DeleteByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	return r.deleteBy(ctx, "cpf", cpf)
}

func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.deleteBy(ctx, "email", email)
}

func (r *UserRepository) deleteBy(ctx context.Context, field, value string) (*entity.User, error) {
	u, err := r.getBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// checkUnique looks up both keys independently and reports every
// id-aware collision in one combined error.
func (r *UserRepository) checkUnique(ctx context.Context, candidate *entity.User) error {
	var conflicts []repository.Conflict
	if found, err := r.lookupID(ctx, "email", candidate.Email); err != nil {
		return err
	} else if found != "" && (candidate.ID == "" || found != candidate.ID) {
		conflicts = append(conflicts, repository.Conflict{Field: "email", Value: candidate.Email})
	}
	if found, err := r.lookupID(ctx, "cpf", candidate.Cpf); err != nil {
		return err
	} else if found != "" && (candidate.ID == "" || found != candidate.ID) {
		conflicts = append(conflicts, repository.Conflict{Field: "cpf", Value: candidate.Cpf})
	}
	if len(conflicts) > 0 {
		return &repository.AlreadyExistsError{Conflicts: conflicts}
	}
	return nil
}

func (r *UserRepository) lookupID(ctx context.Context, field, value string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE `+field+` = $1`, value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// mergeUser applies the shared field-level update semantics: client
// fields come from the candidate, an empty password keeps the stored
// hash, lastFcmRegister moves only when the token value changed, and
// lastUpdate/lastLogin follow the UpdateOptions.
func mergeUser(existing, candidate *entity.User, opts repository.UpdateOptions, now time.Time) *entity.User {
	merged := *candidate
	merged.ID = existing.ID

	if merged.Password == "" {
		merged.Password = existing.Password
	}

	merged.LastLogin = existing.LastLogin
	if !opts.LastLogin.IsZero() {
		merged.LastLogin = opts.LastLogin
	}

	merged.LastFcmRegister = existing.LastFcmRegister
	if existing.FcmRegID != candidate.FcmRegID {
		merged.LastFcmRegister = now
	}

	merged.LastUpdate = existing.LastUpdate
	if opts.TouchLastUpdate {
		merged.LastUpdate = now
	}
	return &merged
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                              entity.User
		role                           string
		lastLogin, lastFcm, lastUpdate *time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Cpf, &role, &u.FcmRegID,
		&u.SalesProviderUserID, &u.CrmProviderUserID, &u.Enabled,
		&lastLogin, &lastFcm, &lastUpdate); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.LastLogin = fromNullTime(lastLogin)
	u.LastFcmRegister = fromNullTime(lastFcm)
	u.LastUpdate = fromNullTime(lastUpdate)
	return &u, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNullTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

var _ repository.UserRepository = (*UserRepository)(nil)
