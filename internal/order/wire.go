package order

import (
	"database/sql"

	"go.uber.org/zap"

	"linentrack/internal/config"
	"linentrack/internal/order/controller"
	"linentrack/internal/order/repository"
	"linentrack/internal/order/service"
	"linentrack/internal/order/usecase"
	"linentrack/internal/spreadsheet"
)

// Module bundles the order components built over one store connection.
// The HTTP server uses Controller; the operator CLI calls the rest directly.
type Module struct {
	Store      *repository.SQLOrderRepository
	Service    *service.OrderService
	Lister     *usecase.ListOrdersUseCase
	Importer   *usecase.ImportOrdersUseCase
	Controller *controller.OrderController
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	schema := spreadsheet.DefaultSchema()

	repo := repository.NewSQLOrderRepository(db, cfg.Database.QueryTimeout)
	svc := service.NewOrderService(repo, logger, cfg.Order.AllowRegression, nil)
	lister := usecase.NewListOrdersUseCase(repo, logger)
	importer := usecase.NewImportOrdersUseCase(repo, schema, logger, nil)

	return &Module{
		Store:      repo,
		Service:    svc,
		Lister:     lister,
		Importer:   importer,
		Controller: controller.NewOrderController(lister, svc, importer, schema, logger, cfg.Server.MaxUploadBytes),
	}
}
