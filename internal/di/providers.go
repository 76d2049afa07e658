package di

import (
	"fmt"

	"gorm.io/gorm"

	"pesanapp/internal/blobstore"
	chathandler "pesanapp/internal/chat/handler"
	"pesanapp/internal/config"
	"pesanapp/internal/user"
)

// Application bundles everything main needs after wiring
type Application struct {
	Config      *config.Config
	DB          *gorm.DB
	Blobs       blobstore.Store
	ChatHandler *chathandler.ChatHandler
	UserHandler *user.Handler
}

// ProvideBlobStore picks the blob backend from config. Disk is the default;
// gridfs reuses an existing MongoDB deployment.
func ProvideBlobStore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Blob.Backend {
	case "", "disk":
		return blobstore.NewDiskStore(cfg.Blob.BaseDir), nil
	case "gridfs":
		return blobstore.NewGridFSStore(cfg)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}
