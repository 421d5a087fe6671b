package api

import (
	"errors"
	"fmt"
)

var (
	//refresh token不在、または更新が拒否された。セッションは必ず全消去される。
	ErrSessionExpired = errors.New("session expired")
	//ネットワーク到達前にローカルで弾いた入力
	ErrValidation = errors.New("validation error")
	//要ログインの操作を未ログインで呼んだ
	ErrLoginRequired = errors.New("login required")
)

// APIError はバックエンドが返した非2xxレスポンス。
// Detailはレスポンスボディの {"detail": "..."}。
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

func NewAPIError(status int, detail string) error {
	return &APIError{
		Status: status,
		Detail: detail,
	}
}

func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}
