package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/notify"
	"github.com/anupamy140/final-ecommerce/internal/store"

	"go.uber.org/zap"
)

// Manager はログイン・登録・ログアウトとcredentialの出し入れを束ねる。
// userとvendorは名義が別（キーもトピックも独立）。
type Manager struct {
	st       store.Store
	user     *api.Client
	vendor   *api.Client
	bus      *event.Bus
	notifier notify.Notifier
	log      *zap.Logger
}

// DI
func NewManager(
	st store.Store,
	user *api.Client,
	vendor *api.Client,
	bus *event.Bus,
	notifier notify.Notifier,
	log *zap.Logger,
) *Manager {
	return &Manager{
		st:       st,
		user:     user,
		vendor:   vendor,
		bus:      bus,
		notifier: notifier,
		log:      log,
	}
}

// /users/login が返す形
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 登録入力（住所をネストで送る）
type RegisterInput struct {
	Email    string             `json:"email"`
	Username string             `json:"username"`
	Password string             `json:"password"`
	DOB      string             `json:"DOB"`
	Address  model.AddressInput `json:"address"`
}

// Login は成功したら3キーをまとめて保存してauthChangeを発火する。
// loginとregisterは認証前なのでtoken更新の対象外（Publicで素のまま投げる）。
func (m *Manager) Login(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return api.ErrValidation
	}

	res, err := m.user.Public(ctx, http.MethodPost, "/users/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return api.DecodeError(res)
	}

	var out loginResponse
	if err := api.DecodeJSON(res, &out); err != nil {
		return err
	}

	identity := out.Username
	if identity == "" {
		identity = email
	}

	cred := model.Credential{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Identity:     identity,
	}
	if err := m.st.SetCredential(ctx, store.UserKeys(), cred); err != nil {
		return err
	}

	m.bus.Publish(event.TopicUserAuth)
	m.notifier.Success("Login successful!")
	return nil
}

func (m *Manager) Register(ctx context.Context, in RegisterInput) error {
	if in.Email == "" || in.Password == "" {
		return api.ErrValidation
	}

	res, err := m.user.Public(ctx, http.MethodPost, "/users/register", in)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return api.DecodeError(res)
	}
	res.Body.Close()

	//登録ではcredentialは触らない（ログインし直してもらう）
	m.notifier.Info("Registered successfully! Please login to continue.")
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.st.ClearCredential(ctx, store.UserKeys()); err != nil {
		return err
	}
	m.bus.Publish(event.TopicUserAuth)
	return nil
}

// ログイン中ユーザーの表示名。未ログインなら空文字。
func (m *Manager) CurrentUser(ctx context.Context) string {
	cred, err := m.st.Credential(ctx, store.UserKeys())
	if err != nil {
		return ""
	}
	return cred.Identity
}

func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	return m.user.IsAuthenticated(ctx)
}

// ===== vendor =====

type vendorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type vendorRegisterRequest struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// /vendors/login が返す形
type vendorLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CompanyName  string `json:"companyName"`
	VendorID     string `json:"vendor_id"`
}

// VendorLogin は出品者名義でログインする。
// 識別情報はJSONエンコードしてvendorキーに保存。
func (m *Manager) VendorLogin(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return api.ErrValidation
	}

	res, err := m.vendor.Public(ctx, http.MethodPost, "/vendors/login", vendorLoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return api.DecodeError(res)
	}

	var out vendorLoginResponse
	if err := api.DecodeJSON(res, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return api.NewAPIError(http.StatusBadGateway, "login response did not include an access token")
	}

	v := model.Vendor{
		CompanyName: out.CompanyName,
		Email:       email,
		VendorID:    out.VendorID,
	}
	if v.CompanyName == "" {
		v.CompanyName = "Vendor"
	}

	identity, err := json.Marshal(v)
	if err != nil {
		return err
	}

	cred := model.Credential{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Identity:     string(identity),
	}
	if err := m.st.SetCredential(ctx, store.VendorKeys(), cred); err != nil {
		return err
	}

	m.bus.Publish(event.TopicVendorAuth)
	m.notifier.Success("Vendor login successful!")
	return nil
}

func (m *Manager) VendorRegister(ctx context.Context, companyName string, email string, password string) error {
	if companyName == "" || email == "" || password == "" {
		return api.ErrValidation
	}

	res, err := m.vendor.Public(ctx, http.MethodPost, "/vendors/register", vendorRegisterRequest{
		CompanyName: companyName,
		Email:       email,
		Password:    password,
	})
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return api.DecodeError(res)
	}
	res.Body.Close()

	m.notifier.Success("Vendor registered successfully! Please log in.")
	return nil
}

func (m *Manager) VendorLogout(ctx context.Context) error {
	if err := m.st.ClearCredential(ctx, store.VendorKeys()); err != nil {
		return err
	}
	m.bus.Publish(event.TopicVendorAuth)
	return nil
}

// ログイン中の出品者。未ログインならnil。
func (m *Manager) CurrentVendor(ctx context.Context) *model.Vendor {
	cred, err := m.st.Credential(ctx, store.VendorKeys())
	if err != nil || cred.Identity == "" {
		return nil
	}

	var v model.Vendor
	if err := json.Unmarshal([]byte(cred.Identity), &v); err != nil {
		m.log.Warn("stored vendor identity is not valid JSON", zap.Error(err))
		return nil
	}
	return &v
}
