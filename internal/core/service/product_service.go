package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// ProductService serves the catalog from seed data. Edits are applied in
// memory only and never pushed upstream; restarting the gateway resets the
// catalog. User records, by contrast, are always server-backed.
type ProductService struct {
	mu       sync.RWMutex
	products map[string]*domain.ProductRecord
	log      zerolog.Logger
}

func NewProductService(log zerolog.Logger) *ProductService {
	s := &ProductService{
		products: make(map[string]*domain.ProductRecord),
		log:      log,
	}
	for _, p := range seedProducts() {
		cp := p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *ProductService) List(_ context.Context) ([]domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductRecord, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ProductService) Get(_ context.Context, id string) (*domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProductService) Update(_ context.Context, id string, upd ports.ProductUpdate) (*domain.ProductRecord, error) {
	if err := validateProductUpdate(upd); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	p.Name = upd.Name
	p.Description = upd.Description
	p.Category = upd.Category
	p.Price = upd.Price
	p.SalePrice = upd.SalePrice
	p.Stock = upd.Stock
	p.Status = upd.Status
	p.Tags = append([]string(nil), upd.Tags...)

	s.log.Info().Str("product_id", id).Int("stock", p.Stock).Bool("low_stock", p.LowStock()).Msg("product updated")

	cp := *p
	return &cp, nil
}

func validateProductUpdate(upd ports.ProductUpdate) error {
	switch {
	case upd.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case upd.Price <= 0:
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	case upd.SalePrice < 0:
		return fmt.Errorf("%w: sale price must not be negative", domain.ErrValidation)
	case upd.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	case upd.Status != domain.ProductStatusActive && upd.Status != domain.ProductStatusInactive:
		return fmt.Errorf("%w: status must be active or inactive", domain.ErrValidation)
	}
	return nil
}

// seedProducts is the mock catalog the dashboard ships with.
func seedProducts() []domain.ProductRecord {
	return []domain.ProductRecord{
		{
			ID: "P-1001", Name: "Wireless Mouse", Description: "2.4GHz ergonomic mouse",
			Category: "accessories", Price: 24.99, SalePrice: 19.99, Stock: 42,
			SKU: "ACC-WM-01", Status: domain.ProductStatusActive, Tags: []string{"peripherals", "sale"},
		},
		{
			ID: "P-1002", Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches",
			Category: "accessories", Price: 89.00, Stock: 3,
			SKU: "ACC-KB-02", Status: domain.ProductStatusActive, Tags: []string{"peripherals"},
		},
		{
			ID: "P-1003", Name: "27\" Monitor", Description: "QHD IPS panel",
			Category: "displays", Price: 249.00, Stock: 0,
			SKU: "DSP-MN-03", Status: domain.ProductStatusInactive, Tags: []string{"displays"},
		},
		{
			ID: "P-1004", Name: "USB-C Dock", Description: "Dual HDMI, 100W PD",
			Category: "accessories", Price: 129.50, Stock: 17,
			SKU: "ACC-DK-04", Status: domain.ProductStatusActive,
		},
	}
}
