package container

import (
	"log/slog"

	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/config"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/models"
	"github.com/sgazz/SuperMoment/internal/services"
)

// Store is the storage backend; it owns events, rosters and vouchers.
type Store interface {
	models.EventRepo
	models.VoucherRepo
}

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	TokenVerifier     *helpers.TokenVerifier
	EventService      *services.EventService
	VoucherService    *services.VoucherService
	RedemptionService *services.RedemptionService
}

// NewContainer creates a new dependency injection container. All services
// share one KeyLock so per-entity exclusion holds across them.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	store Store,
	verifier *helpers.TokenVerifier,
	clk clock.Clock,
) *Container {
	locks := helpers.NewKeyLock()

	return &Container{
		Config:            cfg,
		Logger:            logger,
		TokenVerifier:     verifier,
		EventService:      services.NewEventService(store, locks, clk, logger),
		VoucherService:    services.NewVoucherService(store, store, locks, clk, logger),
		RedemptionService: services.NewRedemptionService(store, store, locks, clk, logger),
	}
}
