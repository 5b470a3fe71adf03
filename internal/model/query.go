package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination bounds shared by listing endpoints.
const (
	DefaultProductLimit = 8
	DefaultOrderLimit   = 10
	MaxPageLimit        = 100
)

// ProductQuery filters and pages the product catalogue.
type ProductQuery struct {
	Page           int
	Limit          int
	OrderBy        string
	OrderDirection string
	Category       string
	Search         string
	MinPrice       *float64
	MaxPrice       *float64
}

var productOrderFields = map[string]bool{
	"createdAt": true,
	"price":     true,
	"stock":     true,
	"name":      true,
}

// Normalise clamps paging to valid bounds and falls back to defaults for
// unknown sort fields.
func (q *ProductQuery) Normalise() {
	q.Page, q.Limit = ClampPage(q.Page, q.Limit, DefaultProductLimit)
	if !productOrderFields[q.OrderBy] {
		q.OrderBy = "createdAt"
	}
	q.OrderDirection = normaliseDirection(q.OrderDirection)
	q.Search = strings.TrimSpace(q.Search)
	if q.MinPrice != nil && *q.MinPrice < 0 {
		zero := 0.0
		q.MinPrice = &zero
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		q.MaxPrice = nil
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}
}

// Values encodes the query for the backend.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.OrderBy != "" {
		v.Set("orderBy", q.OrderBy)
	}
	if q.OrderDirection != "" {
		v.Set("orderDirection", q.OrderDirection)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// OrderQuery filters and pages the merchant order list.
type OrderQuery struct {
	Page           int
	Limit          int
	OrderBy        string
	OrderDirection string
	Status         OrderStatus
	Period         string
}

var orderOrderFields = map[string]bool{
	"createdAt": true,
	"total":     true,
	"status":    true,
}

// Normalise clamps paging and validates the status and period filters.
func (q *OrderQuery) Normalise() error {
	q.Page, q.Limit = ClampPage(q.Page, q.Limit, DefaultOrderLimit)
	if !orderOrderFields[q.OrderBy] {
		q.OrderBy = "createdAt"
	}
	q.OrderDirection = normaliseDirection(q.OrderDirection)
	if q.Status != "" && !q.Status.Valid() {
		return ErrInvalidOrderStatus
	}
	switch q.Period {
	case "", "day", "month", "year":
	default:
		return ErrInvalidPeriod
	}
	return nil
}

// Values encodes the query for the backend.
func (q OrderQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("orderBy", q.OrderBy)
	v.Set("orderDirection", q.OrderDirection)
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Period != "" {
		v.Set("period", q.Period)
	}
	return v
}

// ClampPage bounds page to at least 1 and limit to 1..MaxPageLimit,
// substituting defaultLimit for a missing limit.
func ClampPage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func normaliseDirection(dir string) string {
	if strings.EqualFold(dir, "asc") {
		return "asc"
	}
	return "desc"
}
