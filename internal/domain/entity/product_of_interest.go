package entity

import "strings"

// ProductOfInterest is a standing price-drop subscription: the owner
// (referenced by cpf, not by id) wants a notification once the tracked
// product's price falls to or below MinPriceAlert.
//
// One record exists per (cpf, salesProviderProductId) pair. The owner
// reference is only checked at creation time; deleting a user does not
// cascade to its interest records.
type ProductOfInterest struct {
	ID                     string  `json:"id"`
	Cpf                    string  `json:"cpf"`
	SalesProviderUserID    int64   `json:"salesProviderUserId"`
	SalesProviderProductID int64   `json:"salesProviderProductId"`
	MinPriceAlert          float64 `json:"minPriceAlert"`
}

func (p *ProductOfInterest) Validate() error {
	if strings.TrimSpace(p.Cpf) == "" {
		return &ValidationError{Field: "cpf", Reason: "is required"}
	}
	if p.SalesProviderProductID <= 0 {
		return &ValidationError{Field: "salesProviderProductId", Reason: "must be greater than 0"}
	}
	if p.MinPriceAlert <= 0 {
		return &ValidationError{Field: "minPriceAlert", Reason: "must be greater than 0"}
	}
	return nil
}
