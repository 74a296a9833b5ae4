package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/store"
)

func newService(admins ...string) *Service {
	return NewService(NewRepository(store.NewMemory()), NewJWTService("test-secret", 1), nil, admins)
}

func identityKind(t *testing.T, err error) models.IdentityErrorKind {
	t.Helper()
	var ierr *models.IdentityError
	require.True(t, errors.As(err, &ierr), "expected IdentityError, got %v", err)
	return ierr.Kind
}

func TestSignUpFirstUserIsAdmin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.SignUp(ctx, "Owner@Example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.User.Role)
	assert.Equal(t, "owner@example.com", first.User.Email)
	assert.NotEmpty(t, first.Token)

	second, err := svc.SignUp(ctx, "guest@example.com", "password2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, second.User.Role)
}

func TestSignUpAdminEmails(t *testing.T) {
	svc := newService("boss@example.com")
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "first@example.com", "password1")
	require.NoError(t, err)

	boss, err := svc.SignUp(ctx, "BOSS@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, boss.User.Role)
}

func TestSignUpRejectsBadInput(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "password1")
	assert.Equal(t, models.IdentityInvalidInput, identityKind(t, err))

	_, err = svc.SignUp(ctx, "a@example.com", "short")
	assert.Equal(t, models.IdentityInvalidInput, identityKind(t, err))

	_, err = svc.SignUp(ctx, "a@example.com", strings.Repeat("a", MaxPasswordLength+8))
	assert.Equal(t, models.IdentityInvalidInput, identityKind(t, err))

	_, err = svc.SignUp(ctx, "a@example.com", strings.Repeat("a", MaxPasswordLength))
	assert.NoError(t, err)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "A@EXAMPLE.COM", "password2")
	assert.Equal(t, models.IdentityAlreadyExists, identityKind(t, err))
}

func TestSignIn(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	sess, err := svc.SignIn(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", sess.User.Email)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong-password")
	assert.Equal(t, models.IdentityInvalidCredentials, identityKind(t, err))

	_, err = svc.SignIn(ctx, "nobody@example.com", "password1")
	assert.Equal(t, models.IdentityInvalidCredentials, identityKind(t, err))
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	sess, err := svc.SignUp(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	got, err := svc.GetSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, got.User.ID)

	require.NoError(t, svc.SignOut(ctx, sess.Token))

	_, err = svc.GetSession(ctx, sess.Token)
	assert.Equal(t, models.IdentityInvalidSession, identityKind(t, err))

	other, err := svc.SignIn(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.GetSession(ctx, other.Token)
	assert.NoError(t, err, "signing out one session leaves others alive")
}

func TestGetSessionGarbageToken(t *testing.T) {
	svc := newService()
	_, err := svc.GetSession(context.Background(), "garbage")
	assert.Equal(t, models.IdentityInvalidSession, identityKind(t, err))
}

func TestGetSessionUsesCurrentRole(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "admin@example.com", "password1")
	require.NoError(t, err)
	sess, err := svc.SignUp(ctx, "door@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, sess.User.ID, models.RoleStaff)
	require.NoError(t, err)

	role, err := svc.Role(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, role)

	_, err = svc.SetRole(ctx, sess.User.ID, models.Role("root"))
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestOnSessionChange(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	var seen []*models.UserPublic
	stop := svc.OnSessionChange(func(u *models.UserPublic) { seen = append(seen, u) })

	sess, err := svc.SignUp(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, sess.Token))
	require.Len(t, seen, 2)
	assert.Equal(t, "a@example.com", seen[0].Email)
	assert.Nil(t, seen[1])

	stop()
	_, err = svc.SignIn(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestMemoryRevokerExpires(t *testing.T) {
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti-1", now.Add(time.Minute)))
	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	r := NewRedisRevoker(client)
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Second)))
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestJWTRejectsExpiredAndForeign(t *testing.T) {
	svc := NewJWTService("secret-a", 1)
	token, _, err := svc.Generate(uuid.New(), "a@example.com", "admin")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	_, err = NewJWTService("secret-b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
