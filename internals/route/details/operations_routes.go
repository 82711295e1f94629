// file: internals/route/details/operations_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	stockController "edudesk_backend/internals/features/inventory/stocks/controller"
	StockRoute "edudesk_backend/internals/features/inventory/stocks/route"
	busController "edudesk_backend/internals/features/transport/buses/controller"
	BusRoute "edudesk_backend/internals/features/transport/buses/route"
	orphanController "edudesk_backend/internals/features/uploads/controller"
	OrphanRoute "edudesk_backend/internals/features/uploads/route"
)

// OperationsAdminRoutes: transport, inventaris, storage orphans.
func OperationsAdminRoutes(r fiber.Router, s *Services) {
	BusRoute.BusAdminRoutes(r, busController.NewBusHandler(s.Backend))
	StockRoute.StockAdminRoutes(r, stockController.NewStockHandler(s.Backend))
	OrphanRoute.StorageOrphanAdminRoutes(r, orphanController.NewOrphanHandler(s.Backend, s.Sweeper))
}

// OperationsStaffRoutes: akses harian staf (bus & stok).
func OperationsStaffRoutes(r fiber.Router, s *Services) {
	BusRoute.BusStaffRoutes(r, busController.NewBusHandler(s.Backend))
	StockRoute.StockStaffRoutes(r, stockController.NewStockHandler(s.Backend))
}
