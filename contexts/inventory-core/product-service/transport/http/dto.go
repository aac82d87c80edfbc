// Package http holds the wire DTOs of the product master data endpoints.
package http

import (
	"time"

	"github.com/shopspring/decimal"

	"wareflow/contexts/inventory-core/product-service/domain/entities"
)

type UpsertProductRequest struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Hazmat           bool            `json:"hazmat,omitempty"`
	TemperatureZone  string          `json:"temperature_zone,omitempty"`
	MinShelfLifeDays int             `json:"min_shelf_life_days,omitempty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DemandMean       float64         `json:"demand_mean,omitempty"`
	DemandStdDev     float64         `json:"demand_std_dev,omitempty"`
	LeadTimeMean     float64         `json:"lead_time_mean,omitempty"`
	LeadTimeStdDev   float64         `json:"lead_time_std_dev,omitempty"`
	ServiceLevel     float64         `json:"service_level,omitempty"`
	AnnualUsage      int64           `json:"annual_usage,omitempty"`
}

type ProductResponse struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	AbcClass         string          `json:"abc_class,omitempty"`
	XyzClass         string          `json:"xyz_class,omitempty"`
	ReorderPoint     int64           `json:"reorder_point"`
	SafetyStock      int64           `json:"safety_stock"`
	Hazmat           bool            `json:"hazmat"`
	TemperatureZone  string          `json:"temperature_zone,omitempty"`
	MinShelfLifeDays int             `json:"min_shelf_life_days"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ServiceLevel     float64         `json:"service_level"`
	AnnualUsage      int64           `json:"annual_usage"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func NewProductResponse(product entities.Product) ProductResponse {
	return ProductResponse{
		ProductID:        product.ProductID,
		SKU:              product.SKU,
		Name:             product.Name,
		AbcClass:         string(product.AbcClass),
		XyzClass:         string(product.XyzClass),
		ReorderPoint:     product.ReorderPoint,
		SafetyStock:      product.SafetyStock,
		Hazmat:           product.Hazmat,
		TemperatureZone:  string(product.TemperatureZone),
		MinShelfLifeDays: product.MinShelfLifeDays,
		UnitPrice:        product.UnitPrice,
		ServiceLevel:     product.ServiceLevel,
		AnnualUsage:      product.AnnualUsage,
		UpdatedAt:        product.UpdatedAt,
	}
}
