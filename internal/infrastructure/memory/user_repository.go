// Package memory provides in-process implementations of the directory
// repositories. They back local development and tests; production runs
// on the postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
)

// UserRepository keeps user records in a map guarded by a RWMutex.
// The uniqueness check and the subsequent write happen under the same
// lock, so unlike the postgres implementation this one is not subject
// to the check-then-act race.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User // keyed by id

	// Now is the clock used for server-assigned timestamps. Tests
	// override it; it defaults to time.Now.
	Now func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*entity.User),
		Now:   time.Now,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u := r.findByEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, &repository.NotFoundError{Kind: "user", Key: "email: " + email}
}

func (r *UserRepository) GetByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u := r.findByCpf(cpf); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, &repository.NotFoundError{Kind: "user", Key: "cpf: " + cpf}
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(u); err != nil {
		return nil, err
	}

	now := r.Now()
	rec := *u
	rec.ID = uuid.NewString()
	rec.LastUpdate = now
	if rec.FcmRegID != "" {
		rec.LastFcmRegister = now
	}
	r.users[rec.ID] = &rec
	cp := rec
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User, targetEmail string, opts repository.UpdateOptions) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.findByEmail(targetEmail)
	if existing == nil {
		return nil, &repository.NotFoundError{Kind: "user", Key: "email: " + targetEmail}
	}

	candidate := *u
	candidate.ID = existing.ID
	if err := r.checkUnique(&candidate); err != nil {
		return nil, err
	}

	merged := mergeUser(existing, &candidate, opts, r.Now())
	r.users[merged.ID] = merged
	cp := *merged
	return &cp, nil
}

func (r *UserRepository) DeleteByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findByCpf(cpf)
	if u == nil {
		return nil, &repository.NotFoundError{Kind: "user", Key: "cpf: " + cpf}
	}
	delete(r.users, u.ID)
	cp := *u
	return &cp, nil
}

func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findByEmail(email)
	if u == nil {
		return nil, &repository.NotFoundError{Kind: "user", Key: "email: " + email}
	}
	delete(r.users, u.ID)
	cp := *u
	return &cp, nil
}

// checkUnique applies the id-aware collision rule for both keys and
// reports every collision in a single combined error. Callers hold the
// write lock.
func (r *UserRepository) checkUnique(candidate *entity.User) error {
	var conflicts []repository.Conflict
	if found := r.findByEmail(candidate.Email); found != nil && (candidate.ID == "" || found.ID != candidate.ID) {
		conflicts = append(conflicts, repository.Conflict{Field: "email", Value: candidate.Email})
	}
	if found := r.findByCpf(candidate.Cpf); found != nil && (candidate.ID == "" || found.ID != candidate.ID) {
		conflicts = append(conflicts, repository.Conflict{Field: "cpf", Value: candidate.Cpf})
	}
	if len(conflicts) > 0 {
		return &repository.AlreadyExistsError{Conflicts: conflicts}
	}
	return nil
}

func (r *UserRepository) findByEmail(email string) *entity.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) findByCpf(cpf string) *entity.User {
	for _, u := range r.users {
		if u.Cpf == cpf {
			return u
		}
	}
	return nil
}

// mergeUser applies the field-level update semantics shared by both
// repository implementations: client fields come from the candidate,
// an empty password keeps the stored hash, and the server-assigned
// timestamps follow the UpdateOptions plus the fcm change rule.
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

var _ repository.UserRepository = (*UserRepository)(nil)
