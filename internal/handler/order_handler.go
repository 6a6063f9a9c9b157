package handler

import (
	"net/http"

	"warehouse/internal/domain/model"
	"warehouse/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// OrderHandler serves the /v1/:client_id/orders route.
type OrderHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewOrderHandler(uc *usecase.InventoryUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/:client_id/orders", h.process)
}

func (h *OrderHandler) process(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}

	var req []OrderLineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req) == 0 {
		return badRequest(c, "order batch is empty")
	}

	lines := make([]model.OrderLine, 0, len(req))
	for _, line := range req {
		if line.Quantity < 1 {
			return badRequest(c, "quantity cannot be less than 1")
		}
		lines = append(lines, model.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if err := h.uc.ProcessOrders(c.Request().Context(), ownerID, lines); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "order processed successfully",
	})
}
