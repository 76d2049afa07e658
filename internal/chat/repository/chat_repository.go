package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

// ChatRepository is the row-store capability for chat messages
type ChatRepository interface {
	Insert(ctx context.Context, msg *dbmysql.Message) error
	GetByID(ctx context.Context, idChat uint) (*dbmysql.Message, error)
	ListAll(ctx context.Context) ([]*dbmysql.Message, error)
	ListBySender(ctx context.Context, idUsers uint64) ([]*dbmysql.Message, error)
	ListConversation(ctx context.Context, idUsers, forUsers uint64) ([]*dbmysql.Message, error)
	Delete(ctx context.Context, idChat uint) error
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Insert(ctx context.Context, msg *dbmysql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return nil
}

func (r *chatRepo) GetByID(ctx context.Context, idChat uint) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).First(&msg, "id_chat = ?", idChat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: chat %d", common.ErrNotFound, idChat)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return &msg, nil
}

func (r *chatRepo) ListAll(ctx context.Context) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).Order("date DESC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return messages, nil
}

func (r *chatRepo) ListBySender(ctx context.Context, idUsers uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("id_users = ?", idUsers).
		Order("date DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return messages, nil
}

func (r *chatRepo) ListConversation(ctx context.Context, idUsers, forUsers uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("id_users = ? AND for_users = ?", idUsers, forUsers).
		Order("date DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return messages, nil
}

func (r *chatRepo) Delete(ctx context.Context, idChat uint) error {
	res := r.db.WithContext(ctx).Delete(&dbmysql.Message{}, "id_chat = ?", idChat)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: chat %d", common.ErrNotFound, idChat)
	}
	return nil
}
