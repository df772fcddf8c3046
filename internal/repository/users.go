package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Desoltijfl/checador-demo/internal/crypto"
	"github.com/Desoltijfl/checador-demo/internal/model"
)

// UserStore is the in-memory credential store. Emails are unique after lower-casing.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[int64]model.User
	byEmail map[string]int64
	nextID  int64
	cost    int
	now     func() time.Time

	// dummyHash is compared against when the email is unknown so both failure paths pay for bcrypt.
	dummyOnce sync.Once
	dummyHash string
}

func NewUserStore(bcryptCost int) *UserStore {
	if bcryptCost == 0 {
		bcryptCost = crypto.DefaultCost
	}
	return &UserStore{
		byID:    map[int64]model.User{},
		byEmail: map[string]int64{},
		nextID:  1,
		cost:    bcryptCost,
		now:     time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Register(ctx context.Context, email, password, name string) (model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	// Fast rejection before paying for bcrypt; re-checked under the write lock below.
	if _, exists := s.FindByEmail(ctx, email); exists {
		return model.User{}, ErrDuplicateEmail
	}

	hash, err := crypto.HashPassword(password, s.cost)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return model.User{}, ErrDuplicateEmail
	}
	user := model.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    s.now().UTC(),
	}
	s.nextID++
	s.byID[user.ID] = user
	s.byEmail[email] = user.ID
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	user, ok := s.FindByEmail(ctx, email)
	if !ok {
		_ = crypto.CheckPassword(s.unknownUserHash(), password)
		return model.User{}, ErrInvalidCredentials
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	return user, ok
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (model.User, bool) {
	email = NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return model.User{}, false
	}
	user, ok := s.byID[id]
	return user, ok
}

func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *UserStore) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := crypto.HashPassword("unknown-user-placeholder", s.cost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
