package session

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/notify"
	"github.com/anupamy140/final-ecommerce/internal/store"
	"github.com/anupamy140/final-ecommerce/internal/stub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sessionFixture struct {
	manager *Manager
	st      *store.MemoryStore
	bus     *event.Bus
}

func newSessionFixture(t *testing.T) (*sessionFixture, func()) {
	t.Helper()

	srv := httptest.NewServer(stub.New("test_secret"))

	st := store.NewMemoryStore()
	bus := event.NewBus()
	log := zap.NewNop()

	user := api.NewUserClient(srv.URL, srv.Client(), st, bus, log)
	vendor := api.NewVendorClient(srv.URL, srv.Client(), st, bus, log)
	manager := NewManager(st, user, vendor, bus, notify.NewLogNotifier(log), log)

	return &sessionFixture{manager: manager, st: st, bus: bus}, srv.Close
}

func registerAlice(t *testing.T, m *Manager) {
	t.Helper()
	require.NoError(t, m.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "pass12345",
		DOB:      "2000-01-02",
		Address: model.AddressInput{
			Street:     "1 Main St",
			City:       "Pune",
			State:      "MH",
			PostalCode: "411001",
			Country:    "IN",
		},
	}))
}

// ログイン成功で3キーがまとめて保存され、authChangeが1回飛ぶ
func TestManager_LoginPersistsCredential(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()
	ctx := context.Background()

	changes := 0
	fx.bus.Subscribe(event.TopicUserAuth, "test", func() { changes++ })

	registerAlice(t, fx.manager)
	//登録だけではログイン状態にならない
	assert.False(t, fx.manager.IsLoggedIn(ctx))
	assert.Equal(t, 0, changes)

	require.NoError(t, fx.manager.Login(ctx, "alice@example.com", "pass12345"))

	assert.True(t, fx.manager.IsLoggedIn(ctx))
	assert.Equal(t, "alice", fx.manager.CurrentUser(ctx))
	assert.Equal(t, 1, changes)

	cred, err := fx.st.Credential(ctx, store.UserKeys())
	require.NoError(t, err)
	assert.NotEmpty(t, cred.AccessToken)
	assert.NotEmpty(t, cred.RefreshToken)
	assert.Equal(t, "alice", cred.Identity)
}

// パスワード誤りはエラーになり、credentialは残らない
func TestManager_LoginBadPassword(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()
	ctx := context.Background()

	registerAlice(t, fx.manager)

	err := fx.manager.Login(ctx, "alice@example.com", "wrong")

	require.Error(t, err)
	ae, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 401, ae.Status)
	assert.False(t, fx.manager.IsLoggedIn(ctx))
}

// 入力不備はネットワークに出る前に弾く
func TestManager_LoginValidation(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()

	assert.ErrorIs(t, fx.manager.Login(context.Background(), "", "pass"), api.ErrValidation)
	assert.ErrorIs(t, fx.manager.Login(context.Background(), "a@b.c", ""), api.ErrValidation)
}

// 同じemailの二重登録は拒否される
func TestManager_RegisterDuplicateEmail(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()

	registerAlice(t, fx.manager)
	err := fx.manager.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "other9999",
	})

	require.Error(t, err)
	ae, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 409, ae.Status)
}

// ログアウトで全消去＋authChange
func TestManager_Logout(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()
	ctx := context.Background()

	registerAlice(t, fx.manager)
	require.NoError(t, fx.manager.Login(ctx, "alice@example.com", "pass12345"))

	changes := 0
	fx.bus.Subscribe(event.TopicUserAuth, "test", func() { changes++ })

	require.NoError(t, fx.manager.Logout(ctx))

	assert.False(t, fx.manager.IsLoggedIn(ctx))
	assert.Equal(t, "", fx.manager.CurrentUser(ctx))
	assert.Equal(t, 1, changes)

	cred, err := fx.st.Credential(ctx, store.UserKeys())
	require.NoError(t, err)
	assert.True(t, cred.IsEmpty())
}

// ===== vendor =====

// vendorログインは識別情報をJSONで保存し、user側の名義には触れない
func TestManager_VendorLoginIndependentOfUser(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()
	ctx := context.Background()

	registerAlice(t, fx.manager)
	require.NoError(t, fx.manager.Login(ctx, "alice@example.com", "pass12345"))

	vendorChanges := 0
	fx.bus.Subscribe(event.TopicVendorAuth, "test", func() { vendorChanges++ })

	require.NoError(t, fx.manager.VendorRegister(ctx, "Acme Traders", "acme@example.com", "vendor123"))
	require.NoError(t, fx.manager.VendorLogin(ctx, "acme@example.com", "vendor123"))

	v := fx.manager.CurrentVendor(ctx)
	require.NotNil(t, v)
	assert.Equal(t, "Acme Traders", v.CompanyName)
	assert.Equal(t, "acme@example.com", v.Email)
	assert.NotEmpty(t, v.VendorID)
	assert.Equal(t, 1, vendorChanges)

	//userの名義はそのまま
	assert.True(t, fx.manager.IsLoggedIn(ctx))
	assert.Equal(t, "alice", fx.manager.CurrentUser(ctx))

	//vendorログアウトもuserに波及しない
	require.NoError(t, fx.manager.VendorLogout(ctx))
	assert.Nil(t, fx.manager.CurrentVendor(ctx))
	assert.True(t, fx.manager.IsLoggedIn(ctx))
}

func TestManager_CurrentVendorWhenLoggedOut(t *testing.T) {
	fx, done := newSessionFixture(t)
	defer done()

	assert.Nil(t, fx.manager.CurrentVendor(context.Background()))
}
