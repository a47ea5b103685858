package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/nerdle/internal/db"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	conn, err := db.OpenMigrated(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewUsers(conn)
}

func TestValidateSignup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr bool
	}{
		{"ok", "player_1", "password1", false},
		{"short username", "ab", "password1", true},
		{"long username", "abcdefghijklmnopqrstuvwxy", "password1", true},
		{"bad char", "bad-name", "password1", true},
		{"short password", "player", "short", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSignup(tt.user, tt.pass)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUsers_CreateAndAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)

	u, err := users.Create(ctx, "  Alice ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	assert.Len(t, u.ID, 22)

	_, err = users.Create(ctx, "alice", "another pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := users.Authenticate(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, err = users.Authenticate(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateSignup_Wrapped(t *testing.T) {
	t.Parallel()

	err := ValidateSignup("ab", "password1")
	assert.ErrorIs(t, err, ErrInvalidSignup)
	assert.Contains(t, err.Error(), "username must be 3-24 chars")
}

func TestUsers_InsertUniqueViolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)
	_, err := users.Create(ctx, "carol", "password123")
	require.NoError(t, err)

	// a concurrent signup that passed the existence check before ours committed
	late := &User{ID: GenID(), Username: "CAROL", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, users.insert(ctx, late), ErrUsernameTaken)

	// other constraint failures are not reported as a taken name
	dup := &User{ID: late.ID, Username: "dave", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.insert(ctx, dup))
	again := &User{ID: late.ID, Username: "erin", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	err = users.insert(ctx, again)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestBumpStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)
	u, err := users.Create(ctx, "bob_99", "password123")
	require.NoError(t, err)

	for _, won := range []bool{true, true, false, true} {
		tx, err := users.db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, BumpStats(ctx, tx, u.ID, won))
		require.NoError(t, tx.Commit())
	}

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.GamesPlayed)
	assert.Equal(t, 3, got.Wins)
	assert.Equal(t, 1, got.Streak)
}

func TestTokens_SignParse(t *testing.T) {
	t.Parallel()

	tok := &Tokens{Secret: []byte("s3cret"), ExpiresDays: 1, CookieName: "nerdle_token"}
	ss, exp, err := tok.Sign("id1", "carol")
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tok.Parse(ss)
	require.NoError(t, err)
	assert.Equal(t, Claims{ID: "id1", Username: "carol"}, claims)

	other := &Tokens{Secret: []byte("different")}
	_, err = other.Parse(ss)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tok.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_FromRequest(t *testing.T) {
	t.Parallel()

	tok := &Tokens{CookieName: "nerdle_token"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", tok.FromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "nerdle_token", Value: "fromcookie"})
	assert.Equal(t, "fromcookie", tok.FromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, tok.FromRequest(r))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)
	u, err := users.Create(ctx, "dave", "password123")
	require.NoError(t, err)
	tok := &Tokens{Secret: []byte("k"), CookieName: "nerdle_token"}
	ss, _, err := tok.Sign(u.ID, u.Username)
	require.NoError(t, err)

	var seen *User
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})

	// Optional: guest passes, user is attached when present.
	rec := httptest.NewRecorder()
	Optional(tok, users)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+ss)
	Optional(tok, users)(h).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, u.ID, seen.ID)

	// Require: missing and invalid tokens are rejected.
	seen = nil
	rec = httptest.NewRecorder()
	Require(tok, users)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	Require(tok, users)(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}
