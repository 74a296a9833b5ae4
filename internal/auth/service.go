package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/eventflow/backend/internal/models"
)

// Session is a signed-in user together with the bearer token proving it.
type Session struct {
	Token     string            `json:"token"`
	User      models.UserPublic `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// SessionListener is called after a sign-in, sign-up or sign-out. user is nil on sign-out.
type SessionListener func(user *models.UserPublic)

// Service is the identity provider: accounts, passwords and bearer sessions.
type Service struct {
	repo     *Repository
	jwt      *JWTService
	revoker  Revoker
	admins   map[string]struct{}
	validate *validator.Validate

	mu        sync.Mutex
	nextID    int
	listeners map[int]SessionListener
}

// NewService creates the identity service. Emails in adminEmails get the admin role on sign-up.
func NewService(repo *Repository, jwt *JWTService, revoker Revoker, adminEmails []string) *Service {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{
		repo:      repo,
		jwt:       jwt,
		revoker:   revoker,
		admins:    admins,
		validate:  validator.New(),
		listeners: make(map[int]SessionListener),
	}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, &models.IdentityError{Kind: models.IdentityInvalidInput, Message: "please enter a valid email address"}
	}
	if len(password) < MinPasswordLength {
		return nil, &models.IdentityError{Kind: models.IdentityInvalidInput, Message: "password must be at least 8 characters"}
	}
	if len(password) > MaxPasswordLength {
		return nil, &models.IdentityError{Kind: models.IdentityInvalidInput, Message: "password must be at most 72 bytes"}
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, unavailable(err)
	}
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, u, func(first bool) models.Role {
		if _, ok := s.admins[email]; ok || first {
			return models.RoleAdmin
		}
		return models.RoleParticipant
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil, &models.IdentityError{Kind: models.IdentityAlreadyExists, Message: "account already exists", Err: err}
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return s.issue(created)
}

// SignIn checks credentials and opens a new session. Unknown email and wrong password look the same.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &models.IdentityError{Kind: models.IdentityInvalidInput, Message: "email and password are required"}
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if models.IsNotFound(err) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if !CheckPassword(password, u.PasswordHash) {
		return nil, invalidCredentials()
	}
	return s.issue(u)
}

// SignOut revokes the token. Signing out an already invalid token is an invalid_session error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return invalidSession(err)
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return unavailable(err)
	}
	s.notify(nil)
	return nil
}

// GetSession resolves a bearer token to its session. The role comes from the stored account so changes apply at once.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, invalidSession(err)
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, unavailable(err)
	}
	if revoked {
		return nil, invalidSession(nil)
	}
	u, err := s.repo.GetByID(ctx, claims.UserID)
	if models.IsNotFound(err) {
		return nil, invalidSession(err)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &Session{Token: token, User: u.ToPublic(), ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Role resolves a token to the account's current role.
func (s *Service) Role(ctx context.Context, token string) (models.Role, error) {
	sess, err := s.GetSession(ctx, token)
	if err != nil {
		return "", err
	}
	return sess.User.Role, nil
}

// OnSessionChange registers fn and returns a function that removes it.
func (s *Service) OnSessionChange(fn SessionListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ListUsers returns every account without password hashes.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserPublic, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserPublic, len(users))
	for i := range users {
		out[i] = users[i].ToPublic()
	}
	return out, nil
}

// SetRole changes the role of an account.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.UserPublic, error) {
	switch role {
	case models.RoleAdmin, models.RoleStaff, models.RoleParticipant:
	default:
		return nil, &models.ValidationError{Fields: []string{"role"}, Message: "role must be admin, staff or participant"}
	}
	u, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	pub := u.ToPublic()
	return &pub, nil
}

func (s *Service) issue(u *models.User) (*Session, error) {
	token, claims, err := s.jwt.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, unavailable(err)
	}
	pub := u.ToPublic()
	s.notify(&pub)
	return &Session{Token: token, User: pub, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) notify(user *models.UserPublic) {
	s.mu.Lock()
	fns := make([]SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(user)
	}
}

func invalidCredentials() error {
	return &models.IdentityError{Kind: models.IdentityInvalidCredentials, Message: "invalid email or password"}
}

func invalidSession(err error) error {
	return &models.IdentityError{Kind: models.IdentityInvalidSession, Message: "session expired or invalid", Err: err}
}

func unavailable(err error) error {
	return &models.IdentityError{Kind: models.IdentityUnavailable, Err: err}
}
