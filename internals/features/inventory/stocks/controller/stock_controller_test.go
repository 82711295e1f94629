package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "edudesk_backend/internals/features/inventory/stocks/dto"
	"edudesk_backend/internals/helpers/apitest"
	"edudesk_backend/internals/store/memstore"
)

func newStockApp() *fiber.App {
	h := NewStockHandler(memstore.New())
	app := apitest.NewApp("acme", "admin")
	g := app.Group("/stocks")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/export", h.Export)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Post("/:id/adjust", h.Adjust)
	g.Delete("/:id", h.Delete)
	return app
}

func TestStockFlow(t *testing.T) {
	app := newStockApp()

	res := apitest.JSON(t, app, "POST", "/stocks", fiber.Map{
		"itemName": "Note Book", "className": "Grade 1", "quantity": 10, "unitPrice": 25, "reorderLevel": 5,
	})
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Body))
	var st dto.StockResponse
	res.Decode(t, &st)
	assert.Equal(t, "250", st.TotalValue.String())

	res = apitest.JSON(t, app, "POST", "/stocks", fiber.Map{"itemName": "note  book", "className": "grade 1"})
	assert.Equal(t, fiber.StatusConflict, res.Status)

	res = apitest.JSON(t, app, "POST", "/stocks/"+st.ID+"/adjust", fiber.Map{"direction": "out", "quantity": 11})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.Status)
	assert.Contains(t, res.Env.Errors, "quantity")

	res = apitest.JSON(t, app, "POST", "/stocks/"+st.ID+"/adjust", fiber.Map{"direction": "out", "quantity": 6})
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Body))
	res.Decode(t, &st)
	assert.Equal(t, 4, st.Quantity)
	assert.True(t, st.LowStock)
	assert.Len(t, st.Movements, 1)

	require.Equal(t, fiber.StatusCreated, apitest.JSON(t, app, "POST", "/stocks",
		fiber.Map{"itemName": "Pencil", "className": "Grade 1", "quantity": 100, "reorderLevel": 10}).Status)

	var list []dto.StockResponse
	res = apitest.JSON(t, app, "GET", "/stocks?low_stock=true", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	res.Decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Note Book", list[0].ItemName)

	res = apitest.JSON(t, app, "GET", "/stocks?class_name=Grade%201&sort_by=item_name&order=asc", nil)
	res.Decode(t, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Note Book", list[0].ItemName)

	// rename bentrok dengan item lain
	res = apitest.JSON(t, app, "PATCH", "/stocks/"+st.ID, fiber.Map{"itemName": "pencil"})
	assert.Equal(t, fiber.StatusConflict, res.Status)

	res = apitest.JSON(t, app, "GET", "/stocks/export", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", res.Header.Get("Content-Type"))
}
