package entity

import "strings"

// PriceUpdate is a transient inbound event announcing a new price for an
// external product. It is never persisted.
type PriceUpdate struct {
	ProductID       int64   `json:"productId"`
	NewProductPrice float64 `json:"newProductPrice"`
}

func (e *PriceUpdate) Validate() error {
	if e.ProductID <= 0 {
		return &ValidationError{Field: "productId", Reason: "must be greater than 0"}
	}
	if e.NewProductPrice <= 0 {
		return &ValidationError{Field: "newProductPrice", Reason: "must be greater than 0"}
	}
	return nil
}

// Order is a transient inbound event announcing a status change for a
// single user's order.
type Order struct {
	OrderID             int64  `json:"orderId"`
	Cpf                 string `json:"cpf"`
	SalesProviderUserID int64  `json:"salesProviderUserId"`
	Notification        string `json:"notification"`
	NewOrderStatus      string `json:"newOrderStatus"`
}

func (o *Order) Validate() error {
	if strings.TrimSpace(o.Cpf) == "" {
		return &ValidationError{Field: "cpf", Reason: "is required"}
	}
	if o.OrderID <= 0 {
		return &ValidationError{Field: "orderId", Reason: "must be greater than 0"}
	}
	if o.SalesProviderUserID <= 0 {
		return &ValidationError{Field: "salesProviderUserId", Reason: "is required"}
	}
	if strings.TrimSpace(o.Notification) == "" {
		return &ValidationError{Field: "notification", Reason: "is required"}
	}
	if strings.TrimSpace(o.NewOrderStatus) == "" {
		return &ValidationError{Field: "newOrderStatus", Reason: "is required"}
	}
	return nil
}
