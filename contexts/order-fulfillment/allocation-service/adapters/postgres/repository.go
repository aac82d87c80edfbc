package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	domainerrors "wareflow/contexts/order-fulfillment/allocation-service/domain/errors"
	"wareflow/contexts/order-fulfillment/allocation-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

type orderModel struct {
	OrderID     string    `gorm:"column:order_id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;index"`
	WarehouseID string    `gorm:"column:warehouse_id"`
	Reference   string    `gorm:"column:reference"`
	Status      string    `gorm:"column:status"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "sales_orders" }

type orderLineModel struct {
	OrderID   string `gorm:"column:order_id;primaryKey"`
	LineNo    int    `gorm:"column:line_no;primaryKey"`
	ProductID string `gorm:"column:product_id"`
	VariantID string `gorm:"column:variant_id"`
	Quantity  int64  `gorm:"column:quantity"`
}

func (orderLineModel) TableName() string { return "sales_order_lines" }

type reservationModel struct {
	ReservationID     string     `gorm:"column:reservation_id;primaryKey"`
	TenantID          string     `gorm:"column:tenant_id;uniqueIndex:idx_reservation_key,priority:1"`
	WarehouseID       string     `gorm:"column:warehouse_id"`
	ProductID         string     `gorm:"column:product_id"`
	VariantID         string     `gorm:"column:variant_id"`
	StockLevelID      string     `gorm:"column:stock_level_id;uniqueIndex:idx_reservation_key,priority:5"`
	LotID             string     `gorm:"column:lot_id"`
	Quantity          int64      `gorm:"column:quantity"`
	QuantityFulfilled int64      `gorm:"column:quantity_fulfilled"`
	ReferenceType     string     `gorm:"column:reference_type;uniqueIndex:idx_reservation_key,priority:2"`
	ReferenceID       string     `gorm:"column:reference_id;uniqueIndex:idx_reservation_key,priority:3"`
	ReferenceLine     int        `gorm:"column:reference_line;uniqueIndex:idx_reservation_key,priority:4"`
	Status            string     `gorm:"column:status;index"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateOrder(ctx context.Context, input ports.CreateOrderInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := orderModel{
			OrderID:     input.Order.OrderID,
			TenantID:    input.Order.TenantID,
			WarehouseID: input.Order.WarehouseID,
			Reference:   input.Order.Reference,
			Status:      string(input.Order.Status),
			PlacedAt:    input.Order.PlacedAt,
			UpdatedAt:   input.Order.UpdatedAt,
		}
		if err := tx.Create(&order).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateOrder
			}
			return err
		}
		for _, line := range input.Order.Lines {
			row := orderLineModel{
				OrderID:   input.Order.OrderID,
				LineNo:    line.LineNo,
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		if _, err := eventstore.AppendTx(tx, input.Envelope); err != nil {
			return err
		}
		return outbox.EnqueueTx(tx, input.OutboxEntry)
	})
}

func (r *Repository) GetOrder(ctx context.Context, tenantID, orderID string) (entities.SalesOrder, error) {
	var row orderModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SalesOrder{}, domainerrors.ErrOrderNotFound
		}
		return entities.SalesOrder{}, err
	}

	var lineRows []orderLineModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_no").
		Find(&lineRows).
		Error; err != nil {
		return entities.SalesOrder{}, err
	}

	order := entities.SalesOrder{
		OrderID:     row.OrderID,
		TenantID:    row.TenantID,
		WarehouseID: row.WarehouseID,
		Reference:   row.Reference,
		Status:      entities.OrderStatus(row.Status),
		PlacedAt:    row.PlacedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, line := range lineRows {
		order.Lines = append(order.Lines, entities.OrderLine{
			LineNo:    line.LineNo,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}
	return order, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID, orderID string, status entities.OrderStatus, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, reservation entities.Reservation) (entities.Reservation, bool, error) {
	row := reservationModelFromEntity(reservation)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return reservation, true, nil
	}
	if !isUniqueViolation(err) {
		return entities.Reservation{}, false, err
	}
	var existing reservationModel
	readErr := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ? AND reference_line = ? AND stock_level_id = ?",
			reservation.TenantID, reservation.ReferenceType, reservation.ReferenceID,
			reservation.ReferenceLine, reservation.StockLevelID).
		First(&existing).
		Error
	if readErr != nil {
		return entities.Reservation{}, false, err
	}
	return existing.toEntity(), false, nil
}

func (r *Repository) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]entities.Reservation, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Order("reference_line, stock_level_id").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, tenantID, reservationID string) (entities.Reservation, error) {
	var row reservationModel
	err := r.db.WithContext(ctx).
		Where("reservation_id = ? AND tenant_id = ?", reservationID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Reservation{}, domainerrors.ErrReservationNotFound
		}
		return entities.Reservation{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) Update(ctx context.Context, reservation entities.Reservation) error {
	row := reservationModelFromEntity(reservation)
	result := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("reservation_id = ? AND tenant_id = ?", reservation.ReservationID, reservation.TenantID).
		Updates(map[string]any{
			"quantity_fulfilled": row.QuantityFulfilled,
			"status":             row.Status,
			"expires_at":         row.ExpiresAt,
			"updated_at":         row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReservationNotFound
	}
	return nil
}

func (m reservationModel) toEntity() entities.Reservation {
	return entities.Reservation{
		ReservationID:     m.ReservationID,
		TenantID:          m.TenantID,
		WarehouseID:       m.WarehouseID,
		ProductID:         m.ProductID,
		VariantID:         m.VariantID,
		StockLevelID:      m.StockLevelID,
		LotID:             m.LotID,
		Quantity:          m.Quantity,
		QuantityFulfilled: m.QuantityFulfilled,
		ReferenceType:     m.ReferenceType,
		ReferenceID:       m.ReferenceID,
		ReferenceLine:     m.ReferenceLine,
		Status:            entities.ReservationStatus(m.Status),
		ExpiresAt:         m.ExpiresAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func reservationModelFromEntity(e entities.Reservation) reservationModel {
	return reservationModel{
		ReservationID:     e.ReservationID,
		TenantID:          e.TenantID,
		WarehouseID:       e.WarehouseID,
		ProductID:         e.ProductID,
		VariantID:         e.VariantID,
		StockLevelID:      e.StockLevelID,
		LotID:             e.LotID,
		Quantity:          e.Quantity,
		QuantityFulfilled: e.QuantityFulfilled,
		ReferenceType:     e.ReferenceType,
		ReferenceID:       e.ReferenceID,
		ReferenceLine:     e.ReferenceLine,
		Status:            string(e.Status),
		ExpiresAt:         e.ExpiresAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&orderModel{}, &orderLineModel{}, &reservationModel{}}
}
