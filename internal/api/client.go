package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Client は1つの認証名義（user / vendor）でバックエンドを叩くHTTPクライアント。
// 401を受けたらrefresh tokenで自動更新して、元のリクエストを1回だけやり直す。
// 更新に失敗したらcredentialを全消去してログアウトを発火する。
type Client struct {
	baseURL     string
	httpClient  *http.Client
	store       store.Store
	keys        store.Keys
	refreshPath string
	bus         *event.Bus
	topic       event.Topic
	log         *zap.Logger
}

// DI
func NewClient(
	baseURL string,
	httpClient *http.Client,
	st store.Store,
	keys store.Keys,
	refreshPath string,
	bus *event.Bus,
	topic event.Topic,
	log *zap.Logger,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		store:       st,
		keys:        keys,
		refreshPath: refreshPath,
		bus:         bus,
		topic:       topic,
		log:         log,
	}
}

// 一般ユーザー名義のクライアント
func NewUserClient(baseURL string, httpClient *http.Client, st store.Store, bus *event.Bus, log *zap.Logger) *Client {
	return NewClient(baseURL, httpClient, st, store.UserKeys(), "/users/refresh", bus, event.TopicUserAuth, log)
}

// 出品者名義のクライアント
func NewVendorClient(baseURL string, httpClient *http.Client, st store.Store, bus *event.Bus, log *zap.Logger) *Client {
	return NewClient(baseURL, httpClient, st, store.VendorKeys(), "/vendors/refresh", bus, event.TopicVendorAuth, log)
}

// /users/refresh, /vendors/refresh のリクエスト・レスポンス
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Do は1回の論理リクエスト。
//  1. 保存中のaccess tokenをBearerで付ける（無ければ付けない）
//  2. 401なら refresh tokenで更新して1回だけやり直す
//  3. 401以外のエラーステータスはそのまま呼び出し側に返す（ここでは解釈しない）
//
// 更新は論理リクエストごとに独立で、グローバルな排他はしない。
// 2つのリクエストが同時に401を踏むとそれぞれ更新し、storeへの書き込みは後勝ち。
func (c *Client) Do(ctx context.Context, method string, path string, body any) (*http.Response, error) {
	cred, err := c.store.Credential(ctx, c.keys)
	if err != nil {
		return nil, err
	}

	res, err := c.issue(ctx, method, path, body, cred.AccessToken)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusUnauthorized {
		return res, nil
	}
	res.Body.Close()

	//401。refresh tokenが無ければ即セッション切れ。
	if cred.RefreshToken == "" {
		c.forceLogout(ctx)
		return nil, ErrSessionExpired
	}

	newCred, err := c.refresh(ctx, cred)
	if err != nil {
		c.log.Warn("token refresh failed", zap.Error(err))
		c.forceLogout(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	if err := c.store.SetCredential(ctx, c.keys, newCred); err != nil {
		c.forceLogout(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	c.log.Debug("token refreshed, retrying request",
		zap.String("method", method),
		zap.String("path", path))

	//新しいtokenで1回だけやり直す。再び401でもそのまま返す。
	return c.issue(ctx, method, path, body, newCred.AccessToken)
}

// Public はtokenを付けず、401でも更新しない素のリクエスト。
// login / register / 公開カタログ用。
func (c *Client) Public(ctx context.Context, method string, path string, body any) (*http.Response, error) {
	return c.issue(ctx, method, path, body, "")
}

// 実リクエスト1本
func (c *Client) issue(ctx context.Context, method string, path string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// refreshエンドポイントを1回だけ呼ぶ。
// ネットワーク断も含め、失敗はすべてセッション切れ扱い（呼び出し元でclearする）。
func (c *Client) refresh(ctx context.Context, cred model.Credential) (model.Credential, error) {
	res, err := c.issue(ctx, http.MethodPost, c.refreshPath, refreshRequest{RefreshToken: cred.RefreshToken}, "")
	if err != nil {
		return model.Credential{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return model.Credential{}, DecodeError(res)
	}

	var out refreshResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return model.Credential{}, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return model.Credential{}, fmt.Errorf("refresh response missing tokens")
	}

	//identityは更新しない（表示名はそのまま）
	return model.Credential{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Identity:     cred.Identity,
	}, nil
}

// credential全消去＋ログアウト通知
func (c *Client) forceLogout(ctx context.Context) {
	if err := c.store.ClearCredential(ctx, c.keys); err != nil {
		c.log.Error("failed to clear credentials", zap.Error(err))
	}
	c.bus.Publish(c.topic)
}

func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// ログイン中か（storeを読むだけ）
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	cred, err := c.store.Credential(ctx, c.keys)
	if err != nil {
		return false
	}
	return cred.AccessToken != ""
}

// SessionExpiry は保存中のaccess tokenのexpを返す（表示用）。
// 署名は検証しない。サーバーの検証結果はあくまで401で知る。
func (c *Client) SessionExpiry(ctx context.Context) (time.Time, bool) {
	cred, err := c.store.Credential(ctx, c.keys)
	if err != nil || cred.AccessToken == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(cred.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// DecodeJSON は2xxレスポンスのボディを読む小物。
func DecodeJSON(res *http.Response, out any) error {
	defer res.Body.Close()
	return json.NewDecoder(res.Body).Decode(out)
}

// DecodeError はエラーレスポンスの {"detail": "..."} をAPIErrorにする。
// ボディが読めなくてもステータスだけは返す。
func DecodeError(res *http.Response) error {
	defer res.Body.Close()

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Detail == "" {
		body.Detail = http.StatusText(res.StatusCode)
	}
	return NewAPIError(res.StatusCode, body.Detail)
}
