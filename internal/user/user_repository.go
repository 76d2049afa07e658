package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

type UserRepository interface {
	Insert(ctx context.Context, u *dbmysql.User) error
	GetByID(ctx context.Context, idUsers uint64) (*dbmysql.User, error)
	GetByNomorHP(ctx context.Context, nomorHP string) (*dbmysql.User, error)
	ListAll(ctx context.Context) ([]*dbmysql.User, error)
	Update(ctx context.Context, u *dbmysql.User) error
	UpdateProfileImage(ctx context.Context, idUsers uint64, filename string) error
	Delete(ctx context.Context, idUsers uint64) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Insert(ctx context.Context, u *dbmysql.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, idUsers uint64) (*dbmysql.User, error) {
	var u dbmysql.User
	err := r.db.WithContext(ctx).First(&u, "id_users = ?", idUsers).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", common.ErrNotFound, idUsers)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return &u, nil
}

func (r *userRepo) GetByNomorHP(ctx context.Context, nomorHP string) (*dbmysql.User, error) {
	var u dbmysql.User
	err := r.db.WithContext(ctx).First(&u, "nomor_hp = ?", nomorHP).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, nomorHP)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return &u, nil
}

func (r *userRepo) ListAll(ctx context.Context) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRowWrite, err)
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, u *dbmysql.User) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("id_users = ?", u.IDUsers).
		Updates(map[string]interface{}{
			"nomor_hp": u.NomorHP,
			"username": u.Username,
			"password": u.Password,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", common.ErrNotFound, u.IDUsers)
	}
	return nil
}

func (r *userRepo) UpdateProfileImage(ctx context.Context, idUsers uint64, filename string) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("id_users = ?", idUsers).
		Update("images_profile", filename)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", common.ErrNotFound, idUsers)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, idUsers uint64) error {
	res := r.db.WithContext(ctx).Delete(&dbmysql.User{}, "id_users = ?", idUsers)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", common.ErrRowWrite, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", common.ErrNotFound, idUsers)
	}
	return nil
}
