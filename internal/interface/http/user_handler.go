package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/internal/interface/middleware"
	"github.com/salestrack/messenger-service/pkg/helpers"
	"github.com/salestrack/messenger-service/pkg/response"
	"github.com/salestrack/messenger-service/pkg/validation"
)

type UserHandler struct {
	Svc    *application.DirectoryService
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.DirectoryService, jwt *helpers.JWTManager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userRequest struct {
	Email               string `json:"email" binding:"required,email"`
	Password            string `json:"password"`
	Cpf                 string `json:"cpf" binding:"required"`
	Role                string `json:"role" binding:"required,oneof=ADMIN USER"`
	FcmRegID            string `json:"fcmRegId"`
	SalesProviderUserID int64  `json:"salesProviderUserId"`
	CrmProviderUserID   int64  `json:"crmProviderUserId"`
	Enabled             *bool  `json:"enabled"`
}

func (r *userRequest) toEntity() *entity.User {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &entity.User{
		Email:               r.Email,
		Password:            r.Password,
		Cpf:                 r.Cpf,
		Role:                entity.Role(r.Role),
		FcmRegID:            r.FcmRegID,
		SalesProviderUserID: r.SalesProviderUserID,
		CrmProviderUserID:   r.CrmProviderUserID,
		Enabled:             enabled,
	}
}

// Login authenticates the credentials and issues an access token carrying
// the email and role claims. Login recording (throttled) happens inside
// the service.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token, expiresAt, err := h.JWT.Generate(u.Email, string(u.Role))
	if err != nil {
		helpers.LogError(h.Logger, "failed to generate access token", err, logrus.Fields{"email": u.Email})
		response.Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
		"role":         u.Role,
	}, "login successful")
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users")
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.toEntity())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created")
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Param("email")
	if !h.allow(c, email) {
		return
	}
	u, err := h.Svc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user")
}

func (h *UserHandler) GetByCpf(c *gin.Context) {
	cpf := c.Param("cpf")
	if !h.allow(c, cpf) {
		return
	}
	u, err := h.Svc.GetByCpf(c.Request.Context(), cpf)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user")
}

func (h *UserHandler) Update(c *gin.Context) {
	email := c.Param("email")
	if !h.allow(c, email) {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p := middleware.PrincipalFrom(c)
	u, err := h.Svc.Update(c.Request.Context(), req.toEntity(), email, p.IsAdmin())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated")
}

func (h *UserHandler) DeleteByEmail(c *gin.Context) {
	email := c.Param("email")
	if !h.allow(c, email) {
		return
	}
	u, err := h.Svc.DeleteByEmail(c.Request.Context(), email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user deleted")
}

func (h *UserHandler) DeleteByCpf(c *gin.Context) {
	cpf := c.Param("cpf")
	if !h.allow(c, cpf) {
		return
	}
	u, err := h.Svc.DeleteByCpf(c.Request.Context(), cpf)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user deleted")
}

// allow runs the capability check for the target email or cpf and writes
// the 403 itself when the caller may not act on it.
func (h *UserHandler) allow(c *gin.Context, target string) bool {
	p := middleware.PrincipalFrom(c)
	if !h.Svc.CanActOn(c.Request.Context(), p, target) {
		response.Error(c, http.StatusForbidden, "user not authorized", nil)
		return false
	}
	return true
}

// writeDomainError maps the domain error taxonomy onto status codes:
// validation 400, uniqueness conflict 412, missing record 404.
func writeDomainError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		response.Error(c, http.StatusBadRequest, verr.Error(), map[string]string{verr.Field: verr.Reason})
		return
	}
	var aerr *repository.AlreadyExistsError
	if errors.As(err, &aerr) {
		response.Error(c, http.StatusPreconditionFailed, aerr.Error(), nil)
		return
	}
	var nerr *repository.NotFoundError
	if errors.As(err, &nerr) {
		response.Error(c, http.StatusNotFound, nerr.Error(), nil)
		return
	}
	response.Error(c, http.StatusInternalServerError, "internal error", nil)
}
