package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salestrack/messenger-service/internal/application"
	"github.com/salestrack/messenger-service/internal/domain/entity"
	"github.com/salestrack/messenger-service/internal/domain/repository"
	"github.com/salestrack/messenger-service/pkg/response"
)

// MessageHandler exposes the notification dispatch endpoints. They answer
// with the plain-text per-recipient aggregate instead of the JSON
// envelope.
type MessageHandler struct {
	Notifier *application.NotifierService
	Logger   *logrus.Logger
}

func NewMessageHandler(notifier *application.NotifierService, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Notifier: notifier, Logger: logger}
}

type priceUpdateRequest struct {
	ProductID       int64   `json:"productId"`
	NewProductPrice float64 `json:"newProductPrice"`
}

type orderRequest struct {
	OrderID             int64  `json:"orderId"`
	Cpf                 string `json:"cpf"`
	SalesProviderUserID int64  `json:"salesProviderUserId"`
	Notification        string `json:"notification"`
	NewOrderStatus      string `json:"newOrderStatus"`
}

// PriceUpdate fans a price event out to every interested user and
// returns the newline-joined outcome lines. 404 when nothing matched,
// 400 when the event itself is invalid.
func (h *MessageHandler) PriceUpdate(c *gin.Context) {
	var req priceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Text(c, http.StatusBadRequest, "invalid payload")
		return
	}

	agg, err := h.Notifier.PriceUpdate(c.Request.Context(), &entity.PriceUpdate{
		ProductID:       req.ProductID,
		NewProductPrice: req.NewProductPrice,
	})
	if err != nil {
		h.writePriceUpdateError(c, err)
		return
	}
	response.Text(c, http.StatusOK, agg)
}

// OrderStatus notifies the single user the order belongs to.
func (h *MessageHandler) OrderStatus(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Text(c, http.StatusBadRequest, "invalid payload")
		return
	}

	res, err := h.Notifier.OrderStatus(c.Request.Context(), &entity.Order{
		OrderID:             req.OrderID,
		Cpf:                 req.Cpf,
		SalesProviderUserID: req.SalesProviderUserID,
		Notification:        req.Notification,
		NewOrderStatus:      req.NewOrderStatus,
	})
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Text(c, http.StatusOK, res)
}

func (h *MessageHandler) writePriceUpdateError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		response.Text(c, http.StatusBadRequest, verr.Error())
		return
	}
	var noMatch *application.ErrNoInterestedProducts
	if errors.As(err, &noMatch) {
		response.Text(c, http.StatusNotFound, noMatch.Error())
		return
	}
	h.Logger.WithError(err).WithField("path", c.FullPath()).Error("price update dispatch failed")
	response.Text(c, http.StatusInternalServerError, "internal error")
}

func (h *MessageHandler) writeOrderError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		response.Text(c, http.StatusBadRequest, verr.Error())
		return
	}
	var nerr *repository.NotFoundError
	if errors.As(err, &nerr) {
		response.Text(c, http.StatusNotFound, nerr.Error())
		return
	}
	var noToken *application.ErrNoPushToken
	if errors.As(err, &noToken) {
		response.Text(c, http.StatusPreconditionFailed, noToken.Error())
		return
	}
	var terr *application.TransportError
	if errors.As(err, &terr) {
		response.Text(c, http.StatusBadRequest, terr.Error())
		return
	}
	h.Logger.WithError(err).Error("order dispatch failed")
	response.Text(c, http.StatusInternalServerError, "internal error")
}
