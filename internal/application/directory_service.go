package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/internal/infrastructure/throttle"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// ErrInvalidCredentials hides whether the email or the password was
// wrong from the login response.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultLoginWriteInterval is the window during which repeated logins
// for the same email do not write lastLogin again.
const DefaultLoginWriteInterval = 30 * time.Second

// DirectoryService owns all writes to user and product-of-interest
// records. It layers the domain rules (admin bootstrap, privilege
// guard, password-hash handling, login write throttling, owner checks)
// on top of the uniqueness-checked repositories.
type DirectoryService struct {
	Users     repository.UserRepository
	Interests repository.ProductOfInterestRepository
	Throttle  throttle.Cache
	Logger    *logrus.Logger

	AdminEmail         string
	AdminPassword      string
	LoginWriteInterval time.Duration

	// Now is the clock for throttle decisions; defaults to time.Now.
	Now func() time.Time
}

func NewDirectoryService(users repository.UserRepository, interests repository.ProductOfInterestRepository, th throttle.Cache, logger *logrus.Logger, adminEmail, adminPassword string) *DirectoryService {
	return &DirectoryService{
		Users:              users,
		Interests:          interests,
		Throttle:           th,
		Logger:             logger,
		AdminEmail:         adminEmail,
		AdminPassword:      adminPassword,
		LoginWriteInterval: DefaultLoginWriteInterval,
		Now:                time.Now,
	}
}

// BootstrapAdmin guarantees the reserved admin account exists with the
// ADMIN role. It runs at every start and is safe to re-run: an existing
// admin is left untouched, a record that lost the role gets it back
// without re-hashing the password or touching the login fields.
func (s *DirectoryService) BootstrapAdmin(ctx context.Context) error {
	existing, err := s.Users.GetByEmail(ctx, s.AdminEmail)
	if err != nil && !repository.IsNotFound(err) {
		return err
	}

	if existing == nil {
		hash, err := helpers.HashPassword(s.AdminPassword)
		if err != nil {
			return err
		}
		_, err = s.Users.Create(ctx, &entity.User{
			Email:    s.AdminEmail,
			Password: hash,
			Role:     entity.RoleAdmin,
			Enabled:  true,
		})
		if err != nil {
			return err
		}
		s.Logger.WithField("email", s.AdminEmail).Info("admin user created")
		return nil
	}

	if existing.Role == entity.RoleAdmin {
		return nil
	}

	fixed := *existing
	fixed.Role = entity.RoleAdmin
	fixed.Password = "" // keep the stored hash
	_, err = s.Users.Update(ctx, &fixed, s.AdminEmail, repository.UpdateOptions{})
	if err != nil {
		return err
	}
	s.Logger.WithField("email", s.AdminEmail).Warn("admin user role restored")
	return nil
}

// Register validates the candidate, hashes its password, and creates
// the record with an unset id.
func (s *DirectoryService) Register(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.Password == "" {
		return nil, &entity.ValidationError{Field: "password", Reason: "is required"}
	}
	hash, err := helpers.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	rec := *u
	rec.ID = ""
	rec.Password = hash
	return s.Users.Create(ctx, &rec)
}

// Update rewrites the record found by targetEmail. A non-admin caller
// cannot escalate: whatever role was submitted is forced back to USER.
// An empty password means "unchanged"; a non-empty one replaces the
// stored hash.
func (s *DirectoryService) Update(ctx context.Context, u *entity.User, targetEmail string, callerIsAdmin bool) (*entity.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	rec := *u
	if !callerIsAdmin {
		rec.Role = entity.RoleUser
	}
	if rec.Password != "" {
		hash, err := helpers.HashPassword(rec.Password)
		if err != nil {
			return nil, err
		}
		rec.Password = hash
	}
	return s.Users.Update(ctx, &rec, targetEmail, repository.UpdateOptions{TouchLastUpdate: true})
}

func (s *DirectoryService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

func (s *DirectoryService) GetByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	return s.Users.GetByCpf(ctx, cpf)
}

func (s *DirectoryService) List(ctx context.Context) ([]entity.User, error) {
	return s.Users.List(ctx)
}

func (s *DirectoryService) DeleteByCpf(ctx context.Context, cpf string) (*entity.User, error) {
	return s.Users.DeleteByCpf(ctx, cpf)
}

func (s *DirectoryService) DeleteByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Users.DeleteByEmail(ctx, email)
}

// Authenticate verifies the credentials, rejects disabled accounts, and
// records the login through the throttle cache.
func (s *DirectoryService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Enabled || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	s.RecordLogin(ctx, u)
	return u, nil
}

// RecordLogin writes lastLogin for the user unless the throttle cache
// has seen a login for the same email inside the suppression window.
// A cache failure never blocks the login: it just means the store write
// always happens.
func (s *DirectoryService) RecordLogin(ctx context.Context, u *entity.User) {
	now := s.Now()

	if s.Throttle != nil {
		last, ok, err := s.Throttle.LastLogin(ctx, u.Email)
		if err == nil && ok && now.Sub(last) < s.LoginWriteInterval {
			return
		}
		if err != nil {
			s.Logger.WithError(err).Warn("login throttle cache unavailable")
		} else if serr := s.Throttle.SetLastLogin(ctx, u.Email, now); serr != nil {
			s.Logger.WithError(serr).Warn("login throttle cache write failed")
		}
	}

	rec := *u
	rec.Password = "" // keep the stored hash
	if _, err := s.Users.Update(ctx, &rec, u.Email, repository.UpdateOptions{LastLogin: now}); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Error("failed to record last login")
	}
}

// CanActOn is the single capability check injected into handlers: an
// admin may act on anything; other callers only on their own record,
// addressed either by their email or by their cpf.
func (s *DirectoryService) CanActOn(ctx context.Context, p Principal, target string) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Email == target {
		return true
	}
	u, err := s.Users.GetByEmail(ctx, p.Email)
	if err != nil {
		return false
	}
	return u.Cpf == target
}

// ListInterests returns the owner's subscriptions; the owner must exist.
func (s *DirectoryService) ListInterests(ctx context.Context, cpf string) ([]entity.ProductOfInterest, error) {
	if _, err := s.Users.GetByCpf(ctx, cpf); err != nil {
		return nil, err
	}
	return s.Interests.ListByCpf(ctx, cpf)
}

// SaveInterest upserts a subscription keyed on (cpf, product). The
// owner cpf must reference an existing user at creation time; that
// reference is not re-checked later and user deletion does not cascade.
func (s *DirectoryService) SaveInterest(ctx context.Context, p *entity.ProductOfInterest) (*entity.ProductOfInterest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Users.GetByCpf(ctx, p.Cpf); err != nil {
		return nil, err
	}
	return s.Interests.Upsert(ctx, p)
}

func (s *DirectoryService) DeleteInterest(ctx context.Context, cpf string, productID int64) (*entity.ProductOfInterest, error) {
	return s.Interests.Delete(ctx, cpf, productID)
}
