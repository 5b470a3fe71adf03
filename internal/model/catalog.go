package model

import "time"

// Category groups products in the catalogue.
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CategoryInput is the payload for creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ProductImage is an image attached to a product.
type ProductImage struct {
	ID        int       `json:"id,omitempty"`
	ProductID int       `json:"productId,omitempty"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsMain    bool      `json:"isMain"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Product represents a product in the catalogue.
type Product struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	CategoryID  int            `json:"categoryId"`
	Category    *Category      `json:"category,omitempty"`
	Images      []ProductImage `json:"images"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// MainImage returns the image flagged as main, or the first image.
func (p *Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// Meta describes a page of results.
type Meta struct {
	Total          int    `json:"total"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
	TotalPages     int    `json:"totalPages"`
	OrderBy        string `json:"orderBy,omitempty"`
	OrderDirection string `json:"orderDirection,omitempty"`
}

// ProductPage is a page of products.
type ProductPage struct {
	Data []Product `json:"data"`
	Meta Meta      `json:"meta"`
}

// ProductInput is the merchant form for creating a product.
type ProductInput struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description"`
	Price       float64        `json:"price" validate:"gt=0"`
	Stock       int            `json:"stock" validate:"gte=0"`
	CategoryID  int            `json:"categoryId" validate:"gt=0"`
	Images      []ProductImage `json:"images,omitempty"`
}

// ProductUpdate is the merchant form for editing a product.
type ProductUpdate struct {
	Name           string         `json:"name" validate:"required,max=255"`
	Description    string         `json:"description"`
	Price          float64        `json:"price" validate:"gt=0"`
	Stock          int            `json:"stock" validate:"gte=0"`
	CategoryID     int            `json:"categoryId" validate:"gt=0"`
	AddImages      []ProductImage `json:"addImages,omitempty"`
	RemoveImageIDs []int          `json:"removeImageIds,omitempty"`
	MainImageID    *int           `json:"mainImageId,omitempty"`
}

// StockUpdate sets the stock level of a product.
type StockUpdate struct {
	Stock int `json:"stock"`
}
