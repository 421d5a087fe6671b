package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// テスト用バックエンド
// =====================

// /users/refresh と任意パスを持つ数え上げ付きサーバー
type fakeBackend struct {
	mux *http.ServeMux

	refreshCalls int
	//refreshが返すペア（refreshOKがfalseなら401）
	refreshOK    bool
	nextAccess   string
	nextRefresh  string

	apiCalls  int
	seenAuths []string
	//apiが返すステータス列（足りなくなったら最後を繰り返す）
	apiStatuses []int
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{
		mux:         http.NewServeMux(),
		refreshOK:   true,
		nextAccess:  "A2",
		nextRefresh: "R2",
		apiStatuses: []int{http.StatusOK},
	}

	f.mux.HandleFunc("/users/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls++
		if !f.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "invalid refresh token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  f.nextAccess,
			"refresh_token": f.nextRefresh,
		})
	})

	f.mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		f.seenAuths = append(f.seenAuths, r.Header.Get("Authorization"))
		status := f.apiStatuses[len(f.apiStatuses)-1]
		if f.apiCalls < len(f.apiStatuses) {
			status = f.apiStatuses[f.apiCalls]
		}
		f.apiCalls++
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "total": 0})
		} else {
			json.NewEncoder(w).Encode(map[string]string{"detail": "unauthorized"})
		}
	})

	return f
}

func newTestClient(t *testing.T, f *fakeBackend, cred model.Credential) (*Client, *store.MemoryStore, *event.Bus, func()) {
	t.Helper()

	srv := httptest.NewServer(f.mux)

	st := store.NewMemoryStore()
	if !cred.IsEmpty() {
		require.NoError(t, st.SetCredential(context.Background(), store.UserKeys(), cred))
	}

	bus := event.NewBus()
	client := NewUserClient(srv.URL, srv.Client(), st, bus, zap.NewNop())
	return client, st, bus, srv.Close
}

// =====================
// Do
// =====================

// 200ならそのまま返す（refreshは呼ばれない）
func TestClient_SuccessPassThrough(t *testing.T) {
	f := newFakeBackend()
	client, _, _, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	res, err := client.Get(context.Background(), "/cart")

	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0, f.refreshCalls)
	assert.Equal(t, []string{"Bearer A1"}, f.seenAuths)
}

// シナリオ：A1/R1保持 → 401 → refreshがA2/R2 → storeはA2/R2だけ → A2で1回だけ再送
func TestClient_RefreshRotatesTokensAndRetriesOnce(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusUnauthorized, http.StatusOK}
	client, st, _, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	res, err := client.Get(context.Background(), "/cart")

	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, f.refreshCalls)
	assert.Equal(t, []string{"Bearer A1", "Bearer A2"}, f.seenAuths)

	cred, err := st.Credential(context.Background(), store.UserKeys())
	require.NoError(t, err)
	assert.Equal(t, "A2", cred.AccessToken)
	assert.Equal(t, "R2", cred.RefreshToken)
	//identityは維持する
	assert.Equal(t, "alice", cred.Identity)
}

// 401 → refresh成功 → 再送も401。refreshは1回・再送は1回で、2度目の401はそのまま返す
func TestClient_RetryOnceNoLoop(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusUnauthorized, http.StatusUnauthorized}
	client, _, _, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	res, err := client.Get(context.Background(), "/cart")

	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 1, f.refreshCalls)
	assert.Equal(t, 2, f.apiCalls)
}

// refresh拒否 → 3キーとも消えてログアウトが発火し、ErrSessionExpired
func TestClient_RefreshFailureClearsSession(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusUnauthorized}
	f.refreshOK = false
	client, st, bus, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	logouts := 0
	bus.Subscribe(event.TopicUserAuth, "test", func() { logouts++ })

	_, err := client.Get(context.Background(), "/cart")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, f.refreshCalls)
	assert.Equal(t, 1, logouts)

	cred, cerr := st.Credential(context.Background(), store.UserKeys())
	require.NoError(t, cerr)
	//部分的に残る状態は許さない
	assert.True(t, cred.IsEmpty())
}

// refresh token不在の401は即セッション切れ（refresh呼び出しゼロ）
func TestClient_MissingRefreshToken(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusUnauthorized}
	client, st, bus, done := newTestClient(t, f, model.Credential{AccessToken: "A1", Identity: "alice"})
	defer done()

	logouts := 0
	bus.Subscribe(event.TopicUserAuth, "test", func() { logouts++ })

	_, err := client.Get(context.Background(), "/cart")

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, f.refreshCalls)
	assert.Equal(t, 1, logouts)

	cred, cerr := st.Credential(context.Background(), store.UserKeys())
	require.NoError(t, cerr)
	assert.True(t, cred.IsEmpty())
}

// 401以外のエラーステータスは解釈せずそのまま返す
func TestClient_NonAuthErrorNotRetried(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusBadRequest}
	client, _, _, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	res, err := client.Get(context.Background(), "/cart")

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, 0, f.refreshCalls)
	assert.Equal(t, 1, f.apiCalls)

	apiErr := DecodeError(res)
	ae, ok := AsAPIError(apiErr)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
}

// Publicはtokenを付けず、401でもrefreshしない
func TestClient_PublicSkipsAuth(t *testing.T) {
	f := newFakeBackend()
	f.apiStatuses = []int{http.StatusUnauthorized}
	client, _, _, done := newTestClient(t, f, model.Credential{AccessToken: "A1", RefreshToken: "R1", Identity: "alice"})
	defer done()

	res, err := client.Public(context.Background(), http.MethodGet, "/cart", nil)

	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 0, f.refreshCalls)
	assert.Equal(t, []string{""}, f.seenAuths)
}
