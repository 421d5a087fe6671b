package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	APIBase string // バックエンドのベースURL

	StateDBPath string // ローカル状態DBのパス（空ならデフォルト）

	UndoWindowSec int // addToCartの取り消し猶予（秒）

	SuccessURL string // 決済成功時の戻り先
	CancelURL  string // 決済キャンセル時の戻り先
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	cfg := Config{
		APIBase:     os.Getenv("API_BASE"),
		StateDBPath: os.Getenv("STATE_DB_PATH"),
		SuccessURL:  os.Getenv("SUCCESS_URL"),
		CancelURL:   os.Getenv("CANCEL_URL"),
	}

	//必須チェック
	if cfg.APIBase == "" {
		return Config{}, fmt.Errorf("API_BASE is required")
	}

	//任意（デフォルトあり）
	cfg.UndoWindowSec = 4
	if v := os.Getenv("UNDO_WINDOW_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("UNDO_WINDOW_SEC must be number: %w", err)
		}
		cfg.UndoWindowSec = sec
	}

	if cfg.SuccessURL == "" {
		cfg.SuccessURL = cfg.APIBase + "/#/success"
	}
	if cfg.CancelURL == "" {
		cfg.CancelURL = cfg.APIBase + "/#/cancel"
	}

	return cfg, nil
}

func (c Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowSec) * time.Second
}
