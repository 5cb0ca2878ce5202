package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/gsinghjay/gpt-character-gen/config"
	"github.com/gsinghjay/gpt-character-gen/models"
)

// GormStore implements the Store contract on MySQL. It keeps the same
// external behavior as the JSON document store but gains real transactions,
// so concurrent writers no longer silently lose whole-document updates.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore connects to MySQL using configuration values and migrates the
// character tables.
func NewGormStore(cfg config.AppConfig) (*GormStore, error) {
	dsn := cfg.DatabaseURI
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
	}

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gLogger})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.AutoMigrate(&models.Character{}, &models.Variation{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// List returns all characters with their variations, newest-first.
func (s *GormStore) List(ctx context.Context) ([]models.Character, error) {
	var characters []models.Character
	err := s.db.WithContext(ctx).
		Preload("Variations").
		Order("created_at DESC").
		Find(&characters).Error
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// Get returns the character with the given id, or ErrNotFound.
func (s *GormStore) Get(ctx context.Context, id string) (*models.Character, error) {
	var c models.Character
	err := s.db.WithContext(ctx).
		Preload("Variations").
		First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts the character row and appends any new variations. Variations
// are append-only, so rows that already have an id are left untouched.
func (s *GormStore) Save(ctx context.Context, c *models.Character) error {
	touch(c)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variations").
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(c).Error; err != nil {
			return err
		}
		for i := range c.Variations {
			v := &c.Variations[i]
			if v.ID != 0 {
				continue
			}
			v.CharacterID = c.ID
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the character and its variations. Returns false when no
// record existed.
func (s *GormStore) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&models.Variation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Character{ID: id})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// toGormLogLevel maps the application LogLevel onto GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
