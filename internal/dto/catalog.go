package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitea/boba-platform-api/internal/model"
)

// --- Product ---

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  *uuid.UUID      `json:"categoryId"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
}

type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	CategoryID  *uuid.UUID          `json:"categoryId,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	Price       decimal.Decimal     `json:"price"`
	Status      model.CatalogStatus `json:"status"`
	StoreStatus model.CatalogStatus `json:"storeStatus"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID: p.ID, CategoryID: p.CategoryID, Name: p.Name,
		Description: p.Description, ImageURL: p.ImageURL, Price: p.Price,
		Status: p.Status, StoreStatus: p.StoreStatus,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

// --- Category ---

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CategoryResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      model.CatalogStatus `json:"status"`
	StoreStatus model.CatalogStatus `json:"storeStatus"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func ToCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID: c.ID, Name: c.Name, Description: c.Description,
		Status: c.Status, StoreStatus: c.StoreStatus,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

// --- Topping ---

type CreateToppingRequest struct {
	Name       string          `json:"name" binding:"required"`
	ExtraPrice decimal.Decimal `json:"extraPrice" binding:"required"`
}

type UpdateToppingRequest struct {
	Name       *string          `json:"name"`
	ExtraPrice *decimal.Decimal `json:"extraPrice"`
}

type ToppingResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	ExtraPrice  decimal.Decimal     `json:"extraPrice"`
	Status      model.CatalogStatus `json:"status"`
	StoreStatus model.CatalogStatus `json:"storeStatus"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func ToToppingResponse(t *model.Topping) ToppingResponse {
	return ToppingResponse{
		ID: t.ID, Name: t.Name, ExtraPrice: t.ExtraPrice,
		Status: t.Status, StoreStatus: t.StoreStatus,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

type SetStoreStatusRequest struct {
	StoreStatus model.CatalogStatus `json:"storeStatus" binding:"required,oneof=available unavailable"`
}
