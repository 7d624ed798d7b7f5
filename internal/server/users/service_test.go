package users

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/models"
	"github.com/vevey/vevey/internal/server/sessions"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to, subject, text string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text})
	return nil
}

func (m *fakeMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// passthroughTx mirrors the in-memory store manager: fn runs against the
// shared stores, no transaction scoping.
type passthroughTx struct {
	repo  Repository
	store sessions.Store
}

func (p passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository, store sessions.Store) error) error {
	return fn(ctx, p.repo, p.store)
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *sessions.Service, *fakeMailer) {
	t.Helper()
	repo := NewMemoryRepository()
	store := sessions.NewMemoryStore()
	sess := sessions.NewService(
		sessions.Config{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		auth.NewCodec([]byte("users-test-secret")),
		store,
		discardLogger(),
	)
	mailer := &fakeMailer{}
	svc := NewService(repo, sess, passthroughTx{repo: repo, store: store}, mailer, discardLogger())
	return svc, repo, sess, mailer
}

func seedConfirmed(t *testing.T, repo *MemoryRepository, email, pwd string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), &models.User{
		ID:      email + "-id",
		Email:   email,
		Name:    "Someone",
		PwdHash: hash,
		Status:  models.UserConfirmed,
	})
	require.NoError(t, err)
	return user
}

func TestVerifyPassword(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	seedConfirmed(t, repo, "a@example.com", "correct horse")

	t.Run("valid", func(t *testing.T) {
		user, err := svc.VerifyPassword(ctx, "a@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.VerifyPassword(ctx, "a@example.com", "battery staple")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		_, err := svc.VerifyPassword(ctx, "nobody@example.com", "anything")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("disabled account", func(t *testing.T) {
		user := seedConfirmed(t, repo, "gone@example.com", "pw")
		user.Status = models.UserDisabled
		require.NoError(t, repo.Update(ctx, user))

		_, err := svc.VerifyPassword(ctx, "gone@example.com", "pw")
		assert.True(t, common.IsKind(err, common.KindUserDisabled))
	})

	t.Run("pending account cannot log in", func(t *testing.T) {
		_, err := repo.Create(ctx, &models.User{
			ID: "p1", Email: "pending@example.com", Status: models.UserPending, Code: "123456",
		})
		require.NoError(t, err)

		_, err = svc.VerifyPassword(ctx, "pending@example.com", "whatever")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})
}

func TestLogin(t *testing.T) {
	svc, repo, sess, _ := newTestService(t)
	ctx := context.Background()
	user := seedConfirmed(t, repo, "a@example.com", "pw12345678")

	grant, err := svc.Login(ctx, "a@example.com", "pw12345678")
	require.NoError(t, err)
	require.NotEmpty(t, grant.AccessToken)
	require.NotEmpty(t, grant.RefreshToken)

	principal, err := sess.Verify(grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
}

func TestInviteAndConfirmSignUp(t *testing.T) {
	svc, repo, _, mailer := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Invite(ctx, "new@example.com"))

	msg, ok := mailer.last()
	require.True(t, ok)
	assert.Equal(t, "new@example.com", msg.to)

	user, err := repo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserPending, user.Status)
	require.Len(t, user.Code, 6)

	t.Run("duplicate invite", func(t *testing.T) {
		err := svc.Invite(ctx, "new@example.com")
		assert.True(t, common.IsKind(err, common.KindUserExists))
	})

	t.Run("bad email", func(t *testing.T) {
		err := svc.Invite(ctx, "not-an-email")
		assert.True(t, common.IsKind(err, common.KindInvalidInput))
	})

	t.Run("wrong code", func(t *testing.T) {
		err := svc.ConfirmSignUp(ctx, "new@example.com", "New", "000000", "longenough")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("short password", func(t *testing.T) {
		err := svc.ConfirmSignUp(ctx, "new@example.com", "New", user.Code, "tiny")
		assert.True(t, common.IsKind(err, common.KindInvalidInput))
	})

	t.Run("confirm", func(t *testing.T) {
		require.NoError(t, svc.ConfirmSignUp(ctx, "new@example.com", "New", user.Code, "longenough"))

		confirmed, err := repo.GetByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.UserConfirmed, confirmed.Status)
		assert.Empty(t, confirmed.Code)

		_, err = svc.VerifyPassword(ctx, "new@example.com", "longenough")
		assert.NoError(t, err)
	})

	t.Run("code is single use", func(t *testing.T) {
		err := svc.ConfirmSignUp(ctx, "new@example.com", "New", user.Code, "longenough")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})
}

func TestChangePassword(t *testing.T) {
	svc, repo, sess, _ := newTestService(t)
	ctx := context.Background()
	user := seedConfirmed(t, repo, "a@example.com", "oldpassword")

	grant, err := sess.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "wrong", "newpassword")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("change revokes sessions", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "oldpassword", "newpassword"))

		_, err := svc.VerifyPassword(ctx, "a@example.com", "newpassword")
		assert.NoError(t, err)
		_, err = svc.VerifyPassword(ctx, "a@example.com", "oldpassword")
		assert.Error(t, err)

		_, err = sess.Exchange(ctx, grant.RefreshToken)
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})
}

func TestForgotPassword(t *testing.T) {
	svc, repo, sess, mailer := newTestService(t)
	ctx := context.Background()
	user := seedConfirmed(t, repo, "a@example.com", "oldpassword")

	t.Run("unknown email is silent", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))
		_, ok := mailer.last()
		assert.False(t, ok)
	})

	require.NoError(t, svc.ForgotPassword(ctx, "a@example.com"))
	msg, ok := mailer.last()
	require.True(t, ok)
	assert.Equal(t, "a@example.com", msg.to)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.Code, 6)

	grant, err := sess.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("wrong code", func(t *testing.T) {
		err := svc.ConfirmForgotPassword(ctx, user.ID, "000000", "resetpassword")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("reset revokes sessions", func(t *testing.T) {
		require.NoError(t, svc.ConfirmForgotPassword(ctx, user.ID, stored.Code, "resetpassword"))

		_, err := svc.VerifyPassword(ctx, "a@example.com", "resetpassword")
		assert.NoError(t, err)

		_, err = sess.Exchange(ctx, grant.RefreshToken)
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})
}

func TestUnregister(t *testing.T) {
	svc, repo, sess, _ := newTestService(t)
	ctx := context.Background()
	user := seedConfirmed(t, repo, "a@example.com", "pw12345678")

	grant, err := sess.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		err := svc.Unregister(ctx, user.ID, "nope")
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})

	t.Run("disables and revokes", func(t *testing.T) {
		require.NoError(t, svc.Unregister(ctx, user.ID, "pw12345678"))

		stored, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserDisabled, stored.Status)

		_, err = svc.VerifyPassword(ctx, "a@example.com", "pw12345678")
		assert.True(t, common.IsKind(err, common.KindUserDisabled))

		_, err = sess.Exchange(ctx, grant.RefreshToken)
		assert.True(t, common.IsKind(err, common.KindUnauthorized))
	})
}
