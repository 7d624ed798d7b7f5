package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/db"
	"github.com/vevey/vevey/internal/server/mail"
	"github.com/vevey/vevey/internal/server/models"
	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type testEnv struct {
	schema *Schema
	repo   users.Repository
	sess   *sessions.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()

	stores := db.NewInMemoryStoreManager()
	sess := sessions.NewService(
		sessions.Config{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		auth.NewCodec([]byte("graph-test-secret")),
		stores.Sessions(),
		logger,
	)
	userSvc := users.NewService(stores.Users(), sess, stores, mail.NewLogMailer(logger), logger)

	schema, err := New(Services{
		Sessions: sess,
		Users:    userSvc,
		Notes:    records.NewNotes(stores.Notes(), logger),
		Posts:    records.NewPosts(stores.Posts(), logger),
	})
	require.NoError(t, err)

	return &testEnv{schema: schema, repo: stores.Users(), sess: sess}
}

func (e *testEnv) seedUser(t *testing.T, email, pwd string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := e.repo.Create(context.Background(), &models.User{
		ID:      email + "-id",
		Email:   email,
		Name:    "Someone",
		PwdHash: hash,
		Status:  models.UserConfirmed,
	})
	require.NoError(t, err)
	return user
}

func asPrincipal(userID string) context.Context {
	return auth.WithPrincipal(context.Background(), &models.Principal{ID: userID})
}

func data(t *testing.T, result interface{}) map[string]interface{} {
	t.Helper()
	m, ok := result.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", result)
	return m
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	result := env.schema.Execute(context.Background(), `{ ping }`, nil, "")
	require.Empty(t, result.Errors)
	assert.Equal(t, "ok", data(t, result.Data)["ping"])
}

func TestCreateToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "a@example.com", "pw12345678")

	t.Run("credential grant", func(t *testing.T) {
		query := `mutation {
			createToken(grantType: credential, email: "a@example.com", pwd: "pw12345678") {
				accessToken, expiresIn, refreshToken
			}
		}`
		result := env.schema.Execute(context.Background(), query, nil, "")
		require.Empty(t, result.Errors)

		token := data(t, data(t, result.Data)["createToken"])
		assert.NotEmpty(t, token["accessToken"])
		assert.NotEmpty(t, token["refreshToken"])
		assert.EqualValues(t, int64(60), token["expiresIn"])
	})

	t.Run("wrong password carries Unauthorized code", func(t *testing.T) {
		query := `mutation {
			createToken(grantType: credential, email: "a@example.com", pwd: "wrong") {
				accessToken
			}
		}`
		result := env.schema.Execute(context.Background(), query, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "Unauthorized", result.Errors[0].Extensions["code"])
	})

	t.Run("credential grant requires email and pwd", func(t *testing.T) {
		query := `mutation { createToken(grantType: credential) { accessToken } }`
		result := env.schema.Execute(context.Background(), query, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "MissingParameter", result.Errors[0].Extensions["code"])
	})

	t.Run("refreshToken grant rotates", func(t *testing.T) {
		login := `mutation {
			createToken(grantType: credential, email: "a@example.com", pwd: "pw12345678") {
				refreshToken
			}
		}`
		result := env.schema.Execute(context.Background(), login, nil, "")
		require.Empty(t, result.Errors)
		refreshToken := data(t, data(t, result.Data)["createToken"])["refreshToken"].(string)

		exchange := fmt.Sprintf(`mutation {
			createToken(grantType: refreshToken, refreshToken: %q) {
				accessToken, refreshToken
			}
		}`, refreshToken)
		result = env.schema.Execute(context.Background(), exchange, nil, "")
		require.Empty(t, result.Errors)
		rotated := data(t, data(t, result.Data)["createToken"])
		assert.NotEmpty(t, rotated["accessToken"])
		assert.NotEqual(t, refreshToken, rotated["refreshToken"])

		// the redeemed token is gone
		result = env.schema.Execute(context.Background(), exchange, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "Unauthorized", result.Errors[0].Extensions["code"])
	})
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "a@example.com", "pw12345678")

	t.Run("anonymous is rejected", func(t *testing.T) {
		result := env.schema.Execute(context.Background(), `{ getMe { id } }`, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "Unauthorized", result.Errors[0].Extensions["code"])
	})

	t.Run("principal resolves", func(t *testing.T) {
		result := env.schema.Execute(asPrincipal(user.ID), `{ getMe { id, email, name } }`, nil, "")
		require.Empty(t, result.Errors)
		me := data(t, data(t, result.Data)["getMe"])
		assert.Equal(t, user.ID, me["id"])
		assert.Equal(t, "a@example.com", me["email"])
	})
}

func TestNoteMutations(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "a@example.com", "pw12345678")
	other := env.seedUser(t, "b@example.com", "pw12345678")
	ctx := asPrincipal(user.ID)

	result := env.schema.Execute(ctx, `mutation { createNote(contents: "first") { id, userId, contents, pos } }`, nil, "")
	require.Empty(t, result.Errors)
	note := data(t, data(t, result.Data)["createNote"])
	assert.Equal(t, user.ID, note["userId"])
	assert.Equal(t, "first", note["contents"])
	noteID := note["id"].(string)

	t.Run("update", func(t *testing.T) {
		query := fmt.Sprintf(`mutation { updateNote(id: %q, contents: "second") { contents } }`, noteID)
		result := env.schema.Execute(ctx, query, nil, "")
		require.Empty(t, result.Errors)
		assert.Equal(t, "second", data(t, data(t, result.Data)["updateNote"])["contents"])
	})

	t.Run("foreign update carries NoPermission code", func(t *testing.T) {
		query := fmt.Sprintf(`mutation { updateNote(id: %q, contents: "stolen") { contents } }`, noteID)
		result := env.schema.Execute(asPrincipal(other.ID), query, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "NoPermission", result.Errors[0].Extensions["code"])
	})

	t.Run("owner reads it back, foreign read is null", func(t *testing.T) {
		query := fmt.Sprintf(`{ note(id: %q) { contents } }`, noteID)

		result := env.schema.Execute(ctx, query, nil, "")
		require.Empty(t, result.Errors)
		assert.NotNil(t, data(t, result.Data)["note"])

		result = env.schema.Execute(asPrincipal(other.ID), query, nil, "")
		require.Empty(t, result.Errors)
		assert.Nil(t, data(t, result.Data)["note"])
	})

	t.Run("userNotes lists own records only", func(t *testing.T) {
		query := fmt.Sprintf(`{ userNotes(userId: %q, limit: 10) { items { id } } }`, user.ID)
		result := env.schema.Execute(ctx, query, nil, "")
		require.Empty(t, result.Errors)
		items := data(t, data(t, result.Data)["userNotes"])["items"].([]interface{})
		assert.Len(t, items, 1)

		result = env.schema.Execute(asPrincipal(other.ID), query, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "NoPermission", result.Errors[0].Extensions["code"])
	})

	t.Run("delete then read null", func(t *testing.T) {
		query := fmt.Sprintf(`mutation { deleteNote(id: %q) }`, noteID)
		result := env.schema.Execute(ctx, query, nil, "")
		require.Empty(t, result.Errors)
		assert.Equal(t, true, data(t, result.Data)["deleteNote"])

		read := fmt.Sprintf(`{ note(id: %q) { contents } }`, noteID)
		result = env.schema.Execute(ctx, read, nil, "")
		require.Empty(t, result.Errors)
		assert.Nil(t, data(t, result.Data)["note"])
	})
}

func TestPostVisibility(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, "a@example.com", "pw12345678")
	reader := env.seedUser(t, "b@example.com", "pw12345678")
	ctx := asPrincipal(author.ID)

	result := env.schema.Execute(ctx, `mutation { createPost(contents: "public", open: true) { id, open } }`, nil, "")
	require.Empty(t, result.Errors)
	post := data(t, data(t, result.Data)["createPost"])
	assert.Equal(t, true, post["open"])
	postID := post["id"].(string)

	result = env.schema.Execute(ctx, `mutation { createPost(contents: "private") { id, open } }`, nil, "")
	require.Empty(t, result.Errors)
	privateID := data(t, data(t, result.Data)["createPost"])["id"].(string)

	t.Run("open post readable by anyone", func(t *testing.T) {
		query := fmt.Sprintf(`{ post(id: %q) { contents } }`, postID)

		result := env.schema.Execute(asPrincipal(reader.ID), query, nil, "")
		require.Empty(t, result.Errors)
		assert.NotNil(t, data(t, result.Data)["post"])

		result = env.schema.Execute(context.Background(), query, nil, "")
		require.Empty(t, result.Errors)
		assert.NotNil(t, data(t, result.Data)["post"])
	})

	t.Run("private post is null for others", func(t *testing.T) {
		query := fmt.Sprintf(`{ post(id: %q) { contents } }`, privateID)
		result := env.schema.Execute(asPrincipal(reader.ID), query, nil, "")
		require.Empty(t, result.Errors)
		assert.Nil(t, data(t, result.Data)["post"])
	})

	t.Run("openPosts needs no principal", func(t *testing.T) {
		result := env.schema.Execute(context.Background(), `{ openPosts(limit: 10) { items { id } } }`, nil, "")
		require.Empty(t, result.Errors)
		items := data(t, data(t, result.Data)["openPosts"])["items"].([]interface{})
		require.Len(t, items, 1)
	})

	t.Run("posts listing is author-only", func(t *testing.T) {
		query := fmt.Sprintf(`{ posts(authorId: %q, limit: 10) { items { id } } }`, author.ID)

		result := env.schema.Execute(ctx, query, nil, "")
		require.Empty(t, result.Errors)
		items := data(t, data(t, result.Data)["posts"])["items"].([]interface{})
		assert.Len(t, items, 2)

		result = env.schema.Execute(asPrincipal(reader.ID), query, nil, "")
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, "NoPermission", result.Errors[0].Extensions["code"])
	})
}

func TestInviteMeSuppressesConflict(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@example.com", "pw12345678")

	result := env.schema.Execute(context.Background(), `mutation { inviteMe(email: "taken@example.com") { result } }`, nil, "")
	require.Empty(t, result.Errors)
	assert.Equal(t, true, data(t, data(t, result.Data)["inviteMe"])["result"])
}

func TestRevokeToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "a@example.com", "pw12345678")

	grant, err := env.sess.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	query := fmt.Sprintf(`mutation { revokeToken(refreshToken: %q) { result } }`, grant.RefreshToken)
	result := env.schema.Execute(asPrincipal(user.ID), query, nil, "")
	require.Empty(t, result.Errors)

	_, err = env.sess.Exchange(context.Background(), grant.RefreshToken)
	assert.Error(t, err)
}
