package model

// 端末に保存する認証情報。
// AccessToken と RefreshToken は「両方ある」か「両方ない」のどちらか。
// 片方だけの状態を外に見せてはいけない。
type Credential struct {
	AccessToken  string
	RefreshToken string

	//表示用のユーザー名（vendorの場合はJSONエンコードした識別情報）
	Identity string
}

// トークンが揃っているか
func (c Credential) IsAuthenticated() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// 空か
func (c Credential) IsEmpty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.Identity == ""
}
