package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stateBlob struct {
	Key       string `gorm:"column:blob_key;primaryKey;size:128"`
	Data      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (stateBlob) TableName() string { return "state_blobs" }

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// StateStore keeps app.StateStore blobs in a local SQLite file, the durable
// counterpart of browser local storage.
type StateStore struct {
	db *gorm.DB
}

// NewStateStore migrates the blob table and returns the store.
func NewStateStore(db *gorm.DB) (*StateStore, error) {
	if err := db.AutoMigrate(&stateBlob{}); err != nil {
		return nil, fmt.Errorf("migrate state_blobs: %w", err)
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	var rows []stateBlob
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).Limit(1).Find(&rows).Error
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal([]byte(rows[0].Data), dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *StateStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	row := stateBlob{Key: key, Data: string(data), UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("blob_key = ?", key).Delete(&stateBlob{}).Error
}
