package user

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pesanapp/internal/attachment"
	"pesanapp/internal/blobstore"
	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
)

// UserView is a user row prepared for the client. ImagesProfile carries the
// sentinel, a rehydrated data URI, or null when the blob is unreadable.
type UserView struct {
	IDUsers          uint64  `json:"id_users"`
	NomorHP          string  `json:"nomor_hp"`
	Username         string  `json:"username"`
	ImagesProfile    *string `json:"images_profile"`
	ImagesProfileRef string  `json:"images_profile_ref,omitempty"`
}

type UserService interface {
	CreateUser(ctx context.Context, nomorHP, username, password string) (*dbmysql.User, error)
	GetUser(ctx context.Context, idUsers uint64) (*UserView, error)
	ListUsers(ctx context.Context) ([]*UserView, error)
	UpdateUser(ctx context.Context, idUsers uint64, nomorHP, username, password string) error
	DeleteUser(ctx context.Context, idUsers uint64) error
	Login(ctx context.Context, nomorHP, password string) (*dbmysql.User, string, error)
	SetProfileImage(ctx context.Context, idUsers uint64, img *attachment.Decoded) (*UserView, error)
}

type userService struct {
	repo  UserRepository
	blobs blobstore.Store
}

func NewUserService(r UserRepository, b blobstore.Store) UserService {
	return &userService{repo: r, blobs: b}
}

func (s *userService) CreateUser(ctx context.Context, nomorHP, username, password string) (*dbmysql.User, error) {
	if nomorHP == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: nomor_hp, username, password", common.ErrMissingField)
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrRowWrite, err)
	}

	u := &dbmysql.User{
		NomorHP:       nomorHP,
		Username:      username,
		Password:      hashed,
		ImagesProfile: dbmysql.NoProfileImage,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, idUsers uint64) (*UserView, error) {
	u, err := s.repo.GetByID(ctx, idUsers)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, u), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*UserView, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*UserView, 0, len(users))
	for _, u := range users {
		views = append(views, s.toView(ctx, u))
	}
	return views, nil
}

func (s *userService) UpdateUser(ctx context.Context, idUsers uint64, nomorHP, username, password string) error {
	if nomorHP == "" || username == "" || password == "" {
		return fmt.Errorf("%w: nomor_hp, username, password", common.ErrMissingField)
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: hashing password: %v", common.ErrRowWrite, err)
	}

	return s.repo.Update(ctx, &dbmysql.User{
		IDUsers:  idUsers,
		NomorHP:  nomorHP,
		Username: username,
		Password: hashed,
	})
}

func (s *userService) DeleteUser(ctx context.Context, idUsers uint64) error {
	u, err := s.repo.GetByID(ctx, idUsers)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, idUsers); err != nil {
		return err
	}

	if u.HasProfileImage() {
		if err := s.blobs.Delete(ctx, blobstore.BucketProfile, u.ImagesProfile); err != nil {
			log.Printf("delete user %d: profile image cleanup failed: %v", idUsers, err)
		}
	}
	return nil
}

// Login compares against the stored bcrypt hash. Upstream compared plaintext;
// that is deliberately not carried forward.
func (s *userService) Login(ctx context.Context, nomorHP, password string) (*dbmysql.User, string, error) {
	if nomorHP == "" || password == "" {
		return nil, "", fmt.Errorf("%w: nomor_hp, password", common.ErrMissingField)
	}

	u, err := s.repo.GetByNomorHP(ctx, nomorHP)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", common.ErrNotFound)
		}
		return nil, "", err
	}

	if err := common.CheckPassword(password, u.Password); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", common.ErrNotFound)
	}

	token, err := common.GenerateToken(u.IDUsers, u.Username)
	if err != nil {
		return nil, "", fmt.Errorf("%w: issuing token: %v", common.ErrRowWrite, err)
	}
	return u, token, nil
}

// SetProfileImage stores the new blob before the row references it, same
// ordering as the message writer. The old blob is only removed after the row
// update commits, and best-effort: profile replacement is not atomic.
func (s *userService) SetProfileImage(ctx context.Context, idUsers uint64, img *attachment.Decoded) (*UserView, error) {
	u, err := s.repo.GetByID(ctx, idUsers)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, blobstore.BucketProfile, img.Filename, img.Data); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfileImage(ctx, idUsers, img.Filename); err != nil {
		if derr := s.blobs.Delete(ctx, blobstore.BucketProfile, img.Filename); derr != nil {
			log.Printf("compensation: could not remove profile blob %s: %v", img.Filename, derr)
		}
		return nil, err
	}

	if u.HasProfileImage() {
		if err := s.blobs.Delete(ctx, blobstore.BucketProfile, u.ImagesProfile); err != nil {
			log.Printf("replace profile image %d: old blob cleanup failed: %v", idUsers, err)
		}
	}

	u.ImagesProfile = img.Filename
	return s.toView(ctx, u), nil
}

func (s *userService) toView(ctx context.Context, u *dbmysql.User) *UserView {
	view := &UserView{
		IDUsers:  u.IDUsers,
		NomorHP:  u.NomorHP,
		Username: u.Username,
	}

	if !u.HasProfileImage() {
		sentinel := u.ImagesProfile
		view.ImagesProfile = &sentinel
		return view
	}

	view.ImagesProfileRef = u.ImagesProfile
	if data, err := s.blobs.Get(ctx, blobstore.BucketProfile, u.ImagesProfile); err != nil {
		log.Printf("rehydrate user %d: profile image %s unreadable: %v", u.IDUsers, u.ImagesProfile, err)
	} else {
		uri := attachment.EncodeDataURI(u.ImagesProfile, data)
		view.ImagesProfile = &uri
	}
	return view
}
