package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/salestrack/messenger-service/internal/interface/http"
	"github.com/salestrack/messenger-service/internal/interface/middleware"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// MessagesModule wires the dispatch endpoints. They are admin only:
// pushing notifications at arbitrary users is not something a regular
// account gets to do. /orders/message is a legacy alias of
// /order-status and binds the same handler.
type MessagesModule struct {
	Handler *handlers.MessageHandler
	JWT     *helpers.JWTManager
}

func NewMessagesModule(h *handlers.MessageHandler, jwt *helpers.JWTManager) *MessagesModule {
	return &MessagesModule{Handler: h, JWT: jwt}
}

func (m *MessagesModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.POST("/price-update", m.Handler.PriceUpdate)
		admin.POST("/order-status", m.Handler.OrderStatus)
		admin.POST("/orders/message", m.Handler.OrderStatus)
	}
}
