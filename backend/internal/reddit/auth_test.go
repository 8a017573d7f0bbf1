package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hfabio/mcp-servers/backend/internal/credentials"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory credentials.Store that counts writes
type memStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

func newMemStore(values map[string]string) *memStore {
	if values == nil {
		values = map[string]string{}
	}
	return &memStore{values: values}
}

func (s *memStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.saves++
	return nil
}

var testCreds = Credentials{
	ClientID:        "id",
	ClientSecret:    "secret",
	Username:        "user",
	Password:        "pass",
	ApplicationName: "app",
}

func TestAcquireToken_ExchangesOnceAndWritesOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)

		id, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", id)
		assert.Equal(t, "secret", secret)
		assert.Equal(t, "go:app:v1.0.0 (by /u/user)", r.UserAgent())

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "user", r.PostForm.Get("username"))
		assert.Equal(t, "pass", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"T","token_type":"bearer"}`))
	}))
	defer server.Close()

	store := newMemStore(map[string]string{"other": "kept"})
	acquirer := NewTokenAcquirer(server.URL, testCreds, store, server.Client(), zap.NewNop())

	token, err := acquirer.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "T", store.values[credentials.RedditTokenKey])
	assert.Equal(t, "kept", store.values["other"])

	// second call is served from the store
	token, err = acquirer.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, store.saves)
}

func TestAcquireToken_CachedTokenMakesNoCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected token exchange")
	}))
	defer server.Close()

	store := newMemStore(map[string]string{credentials.RedditTokenKey: "cached"})
	acquirer := NewTokenAcquirer(server.URL, Credentials{}, store, server.Client(), zap.NewNop())

	token, err := acquirer.AcquireToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", token)
	assert.Equal(t, 0, store.saves)
}

func TestAcquireToken_MissingCredentials(t *testing.T) {
	acquirer := NewTokenAcquirer("http://unused", Credentials{ClientID: "id", Username: "user"}, newMemStore(nil), http.DefaultClient, zap.NewNop())

	_, err := acquirer.AcquireToken(context.Background())
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"REDDIT_CLIENT_SECRET", "REDDIT_PASSWORD"}, cfgErr.Fields)
	assert.True(t, apperrors.IsFatal(err))
}

func TestAcquireToken_RejectedExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer server.Close()

	store := newMemStore(nil)
	acquirer := NewTokenAcquirer(server.URL, testCreds, store, server.Client(), zap.NewNop())

	_, err := acquirer.AcquireToken(context.Background())
	require.Error(t, err)

	var authErr *apperrors.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "Unauthorized")
	assert.Equal(t, 0, store.saves)
}
