//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	chathandler "pesanapp/internal/chat/handler"
	"pesanapp/internal/chat/repository"
	chatservice "pesanapp/internal/chat/service"
	"pesanapp/internal/config"
	"pesanapp/internal/dbmysql"
	"pesanapp/internal/user"
)

// InitializeApplication builds the whole service graph. This is just a
// declaration, wire generates the real body.
func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		ProvideBlobStore,
		repository.NewChatRepository,
		chatservice.NewChatService,
		chathandler.NewChatHandler,
		user.NewUserRepository,
		user.NewUserService,
		user.NewHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
