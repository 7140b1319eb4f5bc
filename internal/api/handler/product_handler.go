package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bazarblot/marketplace/internal/api/metrics"
	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category    query     string  false  "Category substring"
// @Param        minPrice    query     number  false  "Minimum price (inclusive)"
// @Param        maxPrice    query     number  false  "Maximum price (inclusive)"
// @Param        activeOnly  query     bool    false  "Only active products (default true)"
// @Success      200         {array}   productResponse
// @Failure      400         {object}  map[string]string
// @Failure      500         {object}  map[string]string
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	f := ports.ProductFilter{ActiveOnly: true}
	var lo, hi float64
	err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		Float64("minPrice", &lo).
		Float64("maxPrice", &hi).
		Bool("activeOnly", &f.ActiveOnly).
		BindError()
	if err != nil {
		return err
	}
	if c.QueryParam("minPrice") != "" {
		f.MinPrice = &lo
	}
	if c.QueryParam("maxPrice") != "" {
		f.MaxPrice = &hi
	}

	views, err := h.service.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(views))
}

// Get handles GET /api/products/:id.
//
// @Summary      Get a product by id
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(view))
}

// Categories handles GET /api/products/categories.
//
// @Summary      List distinct categories of active products
// @Tags         products
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  map[string]string
// @Router       /api/products/categories [get]
func (h *ProductHandler) Categories(c echo.Context) error {
	cats, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// Create handles POST /api/products.
//
// @Summary      Create a product owned by the caller
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      productRequest  true   "Product details"
// @Success      201              {object}  productResponse
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	view, replayed, err := h.service.Create(c.Request().Context(), toProductInput(req), caller, idempotencyKey)
	if err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("create", mutationOutcome(err)).Inc()
		return err
	}

	outcome := "success"
	if replayed {
		outcome = "replayed"
	}
	metrics.ProductMutationsTotal.WithLabelValues("create", outcome).Inc()

	c.Response().Header().Set(echo.HeaderLocation, productLocation(view.ID))
	return c.JSON(http.StatusCreated, toProductResponse(view))
}

// Update handles PUT /api/products/:id.
//
// @Summary      Update a product (owner or admin)
// @Tags         products
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                   true  "Product id"
// @Param        body  body  updateProductRequest  true  "Product details; id must equal the path id"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.ID != id {
		metrics.ProductMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return domain.ErrIDMismatch
	}
	if err := c.Validate(&req); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return err
	}

	if err := h.service.Update(c.Request().Context(), id, toProductInput(req.productRequest), caller); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("update", mutationOutcome(err)).Inc()
		return err
	}
	metrics.ProductMutationsTotal.WithLabelValues("update", "success").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/products/:id.
//
// @Summary      Delete a product (owner or admin)
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  int  true  "Product id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id, caller); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("delete", mutationOutcome(err)).Inc()
		return err
	}
	metrics.ProductMutationsTotal.WithLabelValues("delete", "success").Inc()
	return c.NoContent(http.StatusNoContent)
}

func productID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil {
		return 0, err
	}
	return id, nil
}

func productLocation(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func mutationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateProductName):
		return "conflict"
	default:
		return "error"
	}
}
