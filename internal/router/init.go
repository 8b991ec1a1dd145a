package router

import (
	"github.com/salestrack/messenger-service/internal/container"
	handlers "github.com/salestrack/messenger-service/internal/interface/http"
	"github.com/salestrack/messenger-service/internal/router/modules"
)

// InitModules builds the handlers from the container and registers every
// feature module with the registry. Called once during startup.
func InitModules(r *Registry, c *container.Container) {
	userHandler := handlers.NewUserHandler(c.Directory, c.JWT, c.Logger)
	productHandler := handlers.NewProductHandler(c.Directory, c.Logger)
	messageHandler := handlers.NewMessageHandler(c.Notifier, c.Logger)

	r.Add(modules.NewUsersModule(userHandler, c.JWT, c.Redis))
	r.Add(modules.NewProductsModule(productHandler, c.JWT))
	r.Add(modules.NewMessagesModule(messageHandler, c.JWT))
}
