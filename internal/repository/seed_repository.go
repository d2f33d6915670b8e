package repository

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

// OpenSeedDB opens (creating if needed) the SQLite seed catalogue and
// migrates its schema.
func OpenSeedDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open seed database: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&ConversationModel{},
		&ReplyModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate seed database: %w", err)
	}

	return db, nil
}

type gormSeedRepository struct {
	db *gorm.DB
}

func NewSeedRepository(db *gorm.DB) SeedRepository {
	return &gormSeedRepository{db: db}
}

func (r *gormSeedRepository) Load(ctx context.Context) ([]*domain.Conversation, error) {
	var models []ConversationModel
	err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("position ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	conversations := make([]*domain.Conversation, 0, len(models))
	for i := range models {
		c := ConversationModelToDomain(&models[i])
		if _, err := domain.ParseConversationKind(string(c.Kind)); err != nil {
			return nil, fmt.Errorf("conversation %d: %w", c.ID, err)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

// Replace swaps the whole catalogue for the given conversations, in order.
func (r *gormSeedRepository) Replace(ctx context.Context, conversations []*domain.Conversation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM replies").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM conversations").Error; err != nil {
			return err
		}
		for i, c := range conversations {
			if err := tx.Create(ConversationDomainToModel(c, i)).Error; err != nil {
				return fmt.Errorf("failed to create conversation %d: %w", c.ID, err)
			}
		}
		return nil
	})
}
