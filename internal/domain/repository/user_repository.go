package repository

import (
	"context"
	"time"

	"github.com/salestrack/messenger-service/internal/domain/entity"
)

// UpdateOptions selects which server-assigned timestamps an update
// overwrites. Profile updates stamp lastUpdate; login recording sets
// lastLogin and leaves lastUpdate alone; the admin-bootstrap role fix
// touches neither.
type UpdateOptions struct {
	TouchLastUpdate bool
	// LastLogin overwrites the stored lastLogin when non-zero.
	LastLogin time.Time
}

// UserRepository is the uniqueness-checked store for user records.
//
// Create and Update enforce the email/cpf invariants with an id-aware
// check: an existing record only counts as a conflict when its id
// differs from the candidate's (a record may always update itself).
// Both writes stamp lastFcmRegister if and only if the stored fcmRegId
// value differs from the candidate's, including transitions to and from
// the empty value.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByCpf(ctx context.Context, cpf string) (*entity.User, error)
	// List returns all users sorted by email ascending.
	List(ctx context.Context) ([]entity.User, error)
	// Create assigns the record id and lastUpdate. The candidate's id
	// must be unset.
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	// Update rewrites the record found by targetEmail. An empty
	// candidate password keeps the stored hash.
	Update(ctx context.Context, u *entity.User, targetEmail string, opts UpdateOptions) (*entity.User, error)
	// DeleteByCpf and DeleteByEmail return the removed record, or a
	// NotFoundError when the key does not resolve.
	DeleteByCpf(ctx context.Context, cpf string) (*entity.User, error)
	DeleteByEmail(ctx context.Context, email string) (*entity.User, error)
}
