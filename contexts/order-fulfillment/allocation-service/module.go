package allocationservice

import (
	"log/slog"

	"gorm.io/gorm"

	lotports "wareflow/contexts/inventory-core/lot-service/ports"
	stockports "wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/contexts/order-fulfillment/allocation-service/adapters/memory"
	"wareflow/contexts/order-fulfillment/allocation-service/adapters/postgres"
	"wareflow/contexts/order-fulfillment/allocation-service/adapters/sources"
	"wareflow/contexts/order-fulfillment/allocation-service/application"
	allocagents "wareflow/contexts/order-fulfillment/allocation-service/application/agents"
	"wareflow/contexts/order-fulfillment/allocation-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/ident"
	"wareflow/internal/shared/outbox"
)

type Module struct {
	Service          application.Service
	ReservationAgent allocagents.ReservationAgent
	Store            *memory.Store
}

type Dependencies struct {
	Orders              ports.OrderRepository
	Reservations        ports.ReservationRepository
	Sources             ports.SourceReader
	Stock               ports.StockReserver
	Clock               ports.Clock
	IDGen               ports.IDGenerator
	MinDaysToExpiration int
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Orders:       deps.Orders,
			Reservations: deps.Reservations,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		ReservationAgent: allocagents.ReservationAgent{
			Sources:             deps.Sources,
			Reservations:        deps.Reservations,
			Stock:               deps.Stock,
			Orders:              deps.Orders,
			Clock:               deps.Clock,
			IDGen:               deps.IDGen,
			MinDaysToExpiration: deps.MinDaysToExpiration,
		},
	}
}

func NewPostgresModule(db *gorm.DB, stock stockports.Repository, lots lotports.Repository, reserver ports.StockReserver, sequencer sources.Sequencer, logger *slog.Logger) Module {
	repo := postgres.NewRepository(db)
	return NewModule(Dependencies{
		Orders:       repo,
		Reservations: repo,
		Sources:      sources.Reader{Stock: stock, Lots: lots, Sequencer: sequencer},
		Stock:        reserver,
		Clock:        ident.SystemClock{},
		IDGen:        ident.UUIDGenerator{},
		Logger:       logger,
	})
}

func NewInMemoryModule(events *eventstore.MemoryStore, ob *outbox.MemoryStore, stock stockports.Repository, lots lotports.Repository, reserver ports.StockReserver, logger *slog.Logger) Module {
	store := memory.NewStore(events, ob)
	module := NewModule(Dependencies{
		Orders:       store,
		Reservations: store,
		Sources:      sources.Reader{Stock: stock, Lots: lots},
		Stock:        reserver,
		Clock:        ident.SystemClock{},
		IDGen:        ident.UUIDGenerator{},
		Logger:       logger,
	})
	module.Store = store
	return module
}
