package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/internal/interface/middleware"
	"github.com/salestrack/messenger-service/pkg/response"
	"github.com/salestrack/messenger-service/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.DirectoryService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.DirectoryService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productOfInterestRequest struct {
	Cpf                    string  `json:"cpf" binding:"required"`
	SalesProviderUserID    int64   `json:"salesProviderUserId"`
	SalesProviderProductID int64   `json:"salesProviderProductId" binding:"required,gt=0"`
	MinPriceAlert          float64 `json:"minPriceAlert" binding:"required,gt=0"`
}

func (r *productOfInterestRequest) toEntity() *entity.ProductOfInterest {
	return &entity.ProductOfInterest{
		Cpf:                    r.Cpf,
		SalesProviderUserID:    r.SalesProviderUserID,
		SalesProviderProductID: r.SalesProviderProductID,
		MinPriceAlert:          r.MinPriceAlert,
	}
}

func (h *ProductHandler) ListByCpf(c *gin.Context) {
	cpf := c.Param("cpf")
	if !h.allow(c, cpf) {
		return
	}
	products, err := h.Svc.ListInterests(c.Request.Context(), cpf)
	if err != nil {
		writeInterestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products of interest")
}

func (h *ProductHandler) Save(c *gin.Context) {
	var req productOfInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !h.allow(c, req.Cpf) {
		return
	}
	p, err := h.Svc.SaveInterest(c.Request.Context(), req.toEntity())
	if err != nil {
		writeInterestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product of interest saved")
}

func (h *ProductHandler) Delete(c *gin.Context) {
	cpf := c.Param("cpf")
	if !h.allow(c, cpf) {
		return
	}
	productID, err := strconv.ParseInt(c.Param("salesProviderProductId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "salesProviderProductId must be an integer", nil)
		return
	}
	p, err := h.Svc.DeleteInterest(c.Request.Context(), cpf, productID)
	if err != nil {
		writeInterestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product of interest deleted")
}

func (h *ProductHandler) allow(c *gin.Context, cpf string) bool {
	p := middleware.PrincipalFrom(c)
	if !h.Svc.CanActOn(c.Request.Context(), p, cpf) {
		response.Error(c, http.StatusForbidden, "user not authorized", nil)
		return false
	}
	return true
}

// writeInterestError maps interest errors: validation 400, anything the
// store could not find (the owner on save/list, the composite key on
// delete) 412, matching the precondition-failed contract of the original
// interest endpoints.
func writeInterestError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		response.Error(c, http.StatusBadRequest, verr.Error(), map[string]string{verr.Field: verr.Reason})
		return
	}
	var nerr *repository.NotFoundError
	if errors.As(err, &nerr) {
		response.Error(c, http.StatusPreconditionFailed, nerr.Error(), nil)
		return
	}
	response.Error(c, http.StatusInternalServerError, "internal error", nil)
}
