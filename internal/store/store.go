package store

import (
	"context"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
)

// 永続化するキー名。バックエンドのフロントと同じ名前に揃える。
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"

	KeyVendorAccessToken  = "vendorAccessToken"
	KeyVendorRefreshToken = "vendorRefreshToken"
	KeyVendor             = "vendor"

	KeyTheme           = "theme"
	KeySelectedAddress = "selectedAddressId"
)

// Keys は1つの認証名義（user / vendor）が使うキーの組。
type Keys struct {
	AccessToken  string
	RefreshToken string
	Identity     string
}

// 一般ユーザー名義
func UserKeys() Keys {
	return Keys{
		AccessToken:  KeyAccessToken,
		RefreshToken: KeyRefreshToken,
		Identity:     KeyUser,
	}
}

// 出品者名義
func VendorKeys() Keys {
	return Keys{
		AccessToken:  KeyVendorAccessToken,
		RefreshToken: KeyVendorRefreshToken,
		Identity:     KeyVendor,
	}
}

// Store は端末ローカルのkey/value永続化。
// Credentialの読み書きは必ずKeys単位でまとめて行う。
// 複数プロセスが同じファイルを触る場合は後勝ち（last-writer-wins）。
type Store interface {
	// Credential取得。何も保存されていなければ空のCredentialを返す（エラーにしない）。
	Credential(ctx context.Context, keys Keys) (model.Credential, error)

	// 3つのキーをまとめて保存。途中状態を読ませない。
	SetCredential(ctx context.Context, keys Keys, cred model.Credential) error

	// 3つのキーをまとめて削除。
	ClearCredential(ctx context.Context, keys Keys) error

	// 単発キー（themeなど）の読み書き
	Value(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key string, value string) error
	DeleteValue(ctx context.Context, key string) error
}
