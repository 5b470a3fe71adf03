package model

import "github.com/shopspring/decimal"

// RevenueBreakdown is one row of the backend's revenue series.
type RevenueBreakdown struct {
	Period   string  `json:"period"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
}

// RevenueSummary aggregates the backend's revenue series.
type RevenueSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalQuantity int     `json:"totalQuantity"`
}

// RevenueReport is the backend's revenue answer.
type RevenueReport struct {
	Revenue struct {
		Summary   RevenueSummary     `json:"summary"`
		Breakdown []RevenueBreakdown `json:"breakdown"`
	} `json:"revenue"`
}

// RevenuePoint is a single charted revenue value.
type RevenuePoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueChart is the grouped revenue series for the dashboard.
type RevenueChart struct {
	Mode          string          `json:"mode"`
	Points        []RevenuePoint  `json:"points"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalQuantity int             `json:"totalQuantity"`
}

// CategorySale is a category's share of sales.
type CategorySale struct {
	Category           string  `json:"category"`
	Sales              float64 `json:"sales"`
	Quantity           int     `json:"quantity"`
	SalesPercentage    float64 `json:"salesPercentage"`
	QuantityPercentage float64 `json:"quantityPercentage"`
}

// CategorySalesReport is the backend's category sales answer.
type CategorySalesReport struct {
	Data []CategorySale `json:"data"`
}

// CategorySalesView adds the summed sales to the category rows.
type CategorySalesView struct {
	Period     string          `json:"period"`
	Categories []CategorySale  `json:"categories"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

// DashboardOverview combines the dashboard widgets.
type DashboardOverview struct {
	Period        string            `json:"period"`
	OrderCount    int               `json:"orderCount"`
	Revenue       RevenueChart      `json:"revenue"`
	CategorySales CategorySalesView `json:"categorySales"`
}
