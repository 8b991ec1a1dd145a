package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/salestrack/messenger-service/internal/interface/http"
	"github.com/salestrack/messenger-service/internal/interface/middleware"
	"github.com/salestrack/messenger-service/pkg/helpers"
)

// UsersModule wires login and user CRUD.
// Public: POST /api/login (rate-limited per IP).
// Authenticated: user reads/updates/deletes by email or cpf, guarded by
// the capability check inside the handler.
// Admin only: GET /api/users, POST /api/users.
type UsersModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUsersModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UsersModule {
	return &UsersModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UsersModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP())
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/users/email/:email", m.Handler.GetByEmail)
		auth.PUT("/users/email/:email", m.Handler.Update)
		auth.DELETE("/users/email/:email", m.Handler.DeleteByEmail)
		auth.GET("/users/cpf/:cpf", m.Handler.GetByCpf)
		auth.DELETE("/users/cpf/:cpf", m.Handler.DeleteByCpf)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(m.JWT), middleware.RequireAdmin())
	{
		admin.GET("/users", m.Handler.List)
		admin.POST("/users", m.Handler.Create)
	}
}
