package handler

import (
	"net/http"
	"strconv"
	"strings"

	"warehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SuccessResponse is the envelope every successful response uses.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine failure kinds to transport status codes. Internal
// detail never leaves the process.
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok {
		switch ue.Kind {
		case usecase.KindNotFound:
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: ue.Message})
		case usecase.KindFailedPrecondition:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ue.Message})
		}
	}

	// 500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// pathUUID parses a uuid path parameter and reports whether it was valid.
func pathUUID(c echo.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SetQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

type QuantityResponse struct {
	Quantity int64 `json:"quantity"`
}

func toProductResponse(pq usecase.ProductWithQuantity) ProductResponse {
	return ProductResponse{
		ID:          pq.Product.ID,
		Name:        pq.Product.Name,
		Description: pq.Product.Description,
		SKU:         pq.Product.SKU,
		Quantity:    pq.Quantity,
	}
}

// ProductHandler serves the /v1/:client_id/products routes.
type ProductHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewProductHandler(uc *usecase.InventoryUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1/:client_id/products")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:product_id", h.get)
	g.PUT("/:product_id", h.update)
	g.PUT("/:product_id/quantity", h.setQuantity)
	g.GET("/:product_id/availability", h.checkAvailability)
	g.DELETE("/:product_id", h.delete)
}

func (h *ProductHandler) create(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}
	if req.Quantity < 1 {
		return badRequest(c, "quantity cannot be less than 1")
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), ownerID, req.Name, req.Description, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product added successfully",
		Data:    toProductResponse(out),
	})
}

func (h *ProductHandler) list(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}

	items, err := h.uc.ListProducts(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}

	products := make([]ProductResponse, 0, len(items))
	for _, pq := range items {
		products = append(products, toProductResponse(pq))
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "products retrieved successfully",
		Data:    ProductListResponse{Products: products},
	})
}

func (h *ProductHandler) get(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	out, err := h.uc.GetProduct(c.Request().Context(), ownerID, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product retrieved successfully",
		Data:    toProductResponse(out),
	})
}

func (h *ProductHandler) update(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), ownerID, productID, req.Name, req.Description)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product updated successfully",
		Data:    toProductResponse(out),
	})
}

func (h *ProductHandler) setQuantity(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Quantity < 1 {
		return badRequest(c, "quantity cannot be less than 1")
	}

	s, err := h.uc.SetQuantity(c.Request().Context(), ownerID, productID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product quantity set successfully",
		Data:    QuantityResponse{Quantity: s.Quantity},
	})
}

func (h *ProductHandler) checkAvailability(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	number, err := strconv.ParseInt(c.QueryParam("number"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid number")
	}
	if number < 1 {
		return badRequest(c, "number cannot be less than 1")
	}

	if err := h.uc.CheckAvailability(c.Request().Context(), ownerID, productID, number); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product is available in requested number",
	})
}

func (h *ProductHandler) delete(c echo.Context) error {
	ownerID, ok := pathUUID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client id")
	}
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), ownerID, productID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "product deleted successfully",
	})
}
