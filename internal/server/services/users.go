package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/cryptox"
	"github.com/dmitrijs2005/simplog/internal/keylock"
	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/server/auth"
	"github.com/dmitrijs2005/simplog/internal/server/metrics"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/users"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	UserID int64
	Token  string
}

type UserService struct {
	store   repomanager.RepositoryManager
	issuer  *auth.Issuer
	locks   *keylock.Locker
	log     logging.Logger
	metrics metrics.Recorder

	params cryptox.Params
	// dummyHash is verified against when the username is unknown, so both
	// branches of Verify cost one argon2 evaluation.
	dummyHash string
}

// UserOption configures a UserService.
type UserOption func(*UserService)

// WithPasswordParams overrides the argon2id cost used for new hashes.
func WithPasswordParams(p cryptox.Params) UserOption {
	return func(s *UserService) { s.params = p }
}

func NewUserService(store repomanager.RepositoryManager, issuer *auth.Issuer, locks *keylock.Locker,
	log logging.Logger, rec metrics.Recorder, opts ...UserOption) *UserService {
	if log == nil {
		log = logging.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	s := &UserService{
		store:   store,
		issuer:  issuer,
		locks:   locks,
		log:     log.With("module", "users"),
		metrics: rec,
		params:  cryptox.DefaultParams,
	}
	for _, opt := range opts {
		opt(s)
	}

	if pw, err := common.MakeRandHexString(16); err == nil {
		if h, err := cryptox.HashPasswordWith(pw, s.params); err == nil {
			s.dummyHash = h
		}
	}

	return s
}

// Verify returns the account whose username and password both match, or
// nil, nil when there is none.
func (s *UserService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users().GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, password)
			return nil, nil
		}
		return nil, err
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	list, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(list))
	for _, u := range list {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.UserSummary, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	sum := u.Summary()
	return &sum, nil
}

// Register creates an account and returns its id. A taken username yields
// users.ErrUserNameTaken and the store is left as it was.
func (s *UserService) Register(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, required("username")
	}
	if password == "" {
		return 0, required("password")
	}

	hash, err := cryptox.HashPasswordWith(password, s.params)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	unlock := s.locks.Lock(userKey(username))
	defer unlock()

	var id int64
	err = s.store.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		repo := r.Users()

		exists, err := repo.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return users.ErrUserNameTaken
		}

		u, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
		if err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "user registered", "user_id", id)
	return id, nil
}

// Login verifies the credentials and issues a bearer token. Unknown user and
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.RecordLogin(false)
		return nil, ErrWrongCredentials
	}

	token, err := s.issuer.Issue(user.UserName)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.RecordLogin(true)
	return &LoginResult{UserID: user.ID, Token: token}, nil
}

// Delete removes the account matching both username and password.
func (s *UserService) Delete(ctx context.Context, username, password string) (*models.UserSummary, error) {
	unlock := s.locks.Lock(userKey(username))
	defer unlock()

	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrDeleteCredentials
	}

	if err := s.store.Users().Delete(ctx, user.ID); err != nil {
		return nil, notFound(err, ErrDeleteCredentials)
	}

	s.log.Info(ctx, "user deleted", "user_id", user.ID)
	sum := user.Summary()
	return &sum, nil
}

func userKey(name string) string { return "user:" + name }
