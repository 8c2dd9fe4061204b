package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// ProductHandler serves the catalog pages. The catalog is local mock data;
// edits are held in memory and never proxied upstream.
type ProductHandler struct {
	products ports.ProductService
	activity ports.ActivityService
}

func NewProductHandler(products ports.ProductService, activity ports.ActivityService) *ProductHandler {
	return &ProductHandler{products: products, activity: activity}
}

type productResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	SalePrice   float64  `json:"sale_price,omitempty"`
	Stock       int      `json:"stock"`
	SKU         string   `json:"sku"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	LowStock    bool     `json:"low_stock"`
}

type updateProductRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"       validate:"required,gt=0"`
	SalePrice   float64  `json:"sale_price"  validate:"gte=0"`
	Stock       int      `json:"stock"       validate:"gte=0"`
	Status      string   `json:"status"      validate:"required,oneof=active inactive"`
	Tags        []string `json:"tags"`
}

// List handles GET /admin/products.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"data": out})
}

// Get handles GET /admin/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.products.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Update handles PUT /admin/products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	p, err := h.products.Update(c.Request().Context(), id, ports.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Status:      req.Status,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}

	h.activity.Record(c.Request().Context(), principal.Username, principal.Role, domain.ActionUpdate, "product", id)
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func toProductResponse(p *domain.ProductRecord) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Status:      p.Status,
		Tags:        p.Tags,
		LowStock:    p.LowStock(),
	}
}
