package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/salestrack/messenger-service/internal/interface/http"
	"github.com/salestrack/messenger-service/internal/interface/middleware"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// ProductsModule wires the product-of-interest subscription endpoints.
// All of them require authentication; ownership is decided per request
// by the capability check inside the handler.
type ProductsModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
}

func NewProductsModule(h *handlers.ProductHandler, jwt *helpers.JWTManager) *ProductsModule {
	return &ProductsModule{Handler: h, JWT: jwt}
}

func (m *ProductsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/products/:cpf", m.Handler.ListByCpf)
		auth.POST("/products", m.Handler.Save)
		auth.DELETE("/products/:cpf/:salesProviderProductId", m.Handler.Delete)
	}
}
