// file: internals/features/uploads/controller/orphan_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	model "edudesk_backend/internals/features/uploads/model"
	"edudesk_backend/internals/features/uploads/service"
	helper "edudesk_backend/internals/helpers"
	helperAuth "edudesk_backend/internals/helpers/auth"
	"edudesk_backend/internals/store"
)

type OrphanHandler struct {
	Orphans *store.Collection[model.OrphanCandidate]
	Sweeper *service.Sweeper
}

func NewOrphanHandler(b store.Backend, sw *service.Sweeper) *OrphanHandler {
	return &OrphanHandler{Orphans: model.NewOrphanCollection(b), Sweeper: sw}
}

var orphanSort = map[string]string{
	"created_at": "createdAt",
	"updated_at": "updatedAt",
	"attempts":   "attempts",
}

// GET /api/a/storage-orphans?status=pending
func (h *OrphanHandler) List(c *fiber.Ctx) error {
	tenant, err := helperAuth.GetTenantCode(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	filters := []store.Filter{{Field: "tenantCode", Value: tenant}}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		switch model.OrphanStatus(st) {
		case model.OrphanPending, model.OrphanResolved, model.OrphanAbandoned:
		default:
			return helper.FieldError(c, "status", "oneof=pending resolved abandoned")
		}
		filters = append(filters, store.Filter{Field: "status", Value: st})
	}

	list, total, err := h.Orphans.Find(c.UserContext(), store.GlobalTenant, p.StoreQuery(orphanSort, "created_at", filters...))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", list, helper.BuildMeta(total, p))
}

// POST /api/a/storage-orphans/sweep (owner): jalankan satu putaran sekarang.
func (h *OrphanHandler) Sweep(c *fiber.Ctx) error {
	if h.Sweeper == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Sweeper tidak aktif")
	}
	st, err := h.Sweeper.RunOnce(c.UserContext())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "sweep selesai", st)
}
