package store

import (
	"context"
	"errors"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	domainstore "github.com/anupamy140/final-ecommerce/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 1キー1行
type kvEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

func (kvEntry) TableName() string { return "kv_entries" }

type gormStore struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewして各サービスに注入します。
func NewGormStore(db *gorm.DB) (domainstore.Store, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &gormStore{db: db}, nil
}

// Credential取得。無いキーは空文字のまま返す。
func (s *gormStore) Credential(ctx context.Context, keys domainstore.Keys) (model.Credential, error) {
	var entries []kvEntry

	err := s.db.WithContext(ctx).
		Where("key IN ?", []string{keys.AccessToken, keys.RefreshToken, keys.Identity}).
		Find(&entries).Error
	if err != nil {
		return model.Credential{}, err
	}

	var cred model.Credential
	for _, e := range entries {
		switch e.Key {
		case keys.AccessToken:
			cred.AccessToken = e.Value
		case keys.RefreshToken:
			cred.RefreshToken = e.Value
		case keys.Identity:
			cred.Identity = e.Value
		}
	}
	return cred, nil
}

// 3キーを1トランザクションで保存（読み手に途中状態を見せない）
func (s *gormStore) SetCredential(ctx context.Context, keys domainstore.Keys, cred model.Credential) error {
	rows := []kvEntry{
		{Key: keys.AccessToken, Value: cred.AccessToken},
		{Key: keys.RefreshToken, Value: cred.RefreshToken},
		{Key: keys.Identity, Value: cred.Identity},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

// 3キーを1トランザクションで削除
func (s *gormStore) ClearCredential(ctx context.Context, keys domainstore.Keys) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Where("key IN ?", []string{keys.AccessToken, keys.RefreshToken, keys.Identity}).
			Delete(&kvEntry{}).Error
	})
}

func (s *gormStore) Value(ctx context.Context, key string) (string, error) {
	var e kvEntry

	err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return e.Value, nil
}

func (s *gormStore) SetValue(ctx context.Context, key string, value string) error {
	row := kvEntry{Key: key, Value: value}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *gormStore) DeleteValue(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&kvEntry{}).Error
}
