package application

import (
	"context"
	"errors"
	"log/slog"

	"wareflow/contexts/inventory-core/product-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/product-service/domain/errors"
	"wareflow/contexts/inventory-core/product-service/ports"
	stockports "wareflow/contexts/inventory-core/stock-service/ports"
	slottingports "wareflow/contexts/warehouse-ops/slotting-service/ports"
)

// Service owns product master data and answers the policy, profile, and
// statistics reads of the other contexts.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) GetProduct(ctx context.Context, tenantID, productID string) (entities.Product, error) {
	if tenantID == "" || productID == "" {
		return entities.Product{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetProduct(ctx, tenantID, productID)
}

func (s Service) ListProducts(ctx context.Context, tenantID string) ([]entities.Product, error) {
	if tenantID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Repo.ListByTenant(ctx, tenantID)
}

func (s Service) UpsertProduct(ctx context.Context, product entities.Product) (entities.Product, error) {
	if product.TenantID == "" || product.ProductID == "" || product.SKU == "" {
		return entities.Product{}, domainerrors.ErrInvalidInput
	}
	product.UpdatedAt = s.Clock.Now().UTC()
	return s.Repo.Upsert(ctx, product)
}

// ReorderPolicy satisfies the stock service's policy reader.
func (s Service) ReorderPolicy(ctx context.Context, tenantID, productID string) (stockports.ReorderPolicy, bool, error) {
	product, err := s.Repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrProductNotFound) {
			return stockports.ReorderPolicy{}, false, nil
		}
		return stockports.ReorderPolicy{}, false, err
	}
	return stockports.ReorderPolicy{
		ProductID:    product.ProductID,
		ReorderPoint: product.ReorderPoint,
		SafetyStock:  product.SafetyStock,
	}, true, nil
}

// ProductProfile satisfies the slotting service's profile reader.
func (s Service) ProductProfile(ctx context.Context, tenantID, productID string) (slottingports.ProductProfile, bool, error) {
	product, err := s.Repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrProductNotFound) {
			return slottingports.ProductProfile{}, false, nil
		}
		return slottingports.ProductProfile{}, false, err
	}
	return slottingports.ProductProfile{
		ProductID:       product.ProductID,
		AbcClass:        string(product.AbcClass),
		TemperatureZone: string(product.TemperatureZone),
		Hazmat:          product.Hazmat,
	}, true, nil
}

// UpdateClassification records the ABC/XYZ classes computed by the planning
// agents.
func (s Service) UpdateClassification(ctx context.Context, tenantID, productID string, abc entities.AbcClass, xyz entities.XyzClass) error {
	product, err := s.Repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	product.AbcClass = abc
	product.XyzClass = xyz
	product.UpdatedAt = s.Clock.Now().UTC()
	_, err = s.Repo.Upsert(ctx, product)
	return err
}

// UpdateReplenishment records the safety stock and reorder point computed by
// the planning agents.
func (s Service) UpdateReplenishment(ctx context.Context, tenantID, productID string, safetyStock, reorderPoint int64) error {
	product, err := s.Repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	product.SafetyStock = safetyStock
	product.ReorderPoint = reorderPoint
	product.UpdatedAt = s.Clock.Now().UTC()
	_, err = s.Repo.Upsert(ctx, product)
	return err
}
