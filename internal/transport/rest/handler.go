// Package rest provides HTTP handlers for catalog and stock operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	cerrors "github.com/stockroom/catalog/internal/errors"
	"github.com/stockroom/catalog/internal/service"
	"github.com/stockroom/catalog/pkg/web"
)

type Handler struct {
	service  service.ProductService
	stock    service.StockService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided services.
func NewHandler(svc service.ProductService, stock service.StockService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  svc,
		stock:    stock,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Delete("/", h.DeleteAll)

		r.Get("/category/{category}", h.FindByCategory)
		r.Get("/filter/{category}/{minPrice}/{maxPrice}", h.FindByPriceRangeAndCategory)
		r.Put("/restore/{id}/{quantity}", h.Restore)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Put("/{quantity}", h.Reserve)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByCategory retrieves products whose category matches the path value, ignoring case.
func (h *Handler) FindByCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := r.PathValue("category")
	mLogger.DebugContext(r.Context(), "Received request to find products by category", "category", category)
	list, err := h.service.FindByCategory(r.Context(), category)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving products by category", "category", category, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved products by category", "category", category, "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByPriceRangeAndCategory retrieves products within an inclusive price range
// whose category matches the path value exactly.
func (h *Handler) FindByPriceRangeAndCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := r.PathValue("category")
	minPrice, ok := web.ParsePathGte(r, w, mLogger, "minPrice", 0)
	if !ok {
		return
	}
	maxPrice, ok := web.ParsePathGte(r, w, mLogger, "maxPrice", minPrice)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to filter products",
		"category", category, "minPrice", minPrice, "maxPrice", maxPrice)
	list, err := h.service.FindByPriceRangeAndCategory(r.Context(), category, minPrice, maxPrice)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error filtering products", "category", category, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully filtered products", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if !h.bindJSON(w, r, mLogger, &productCreateDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update replaces all mutable fields of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productDTO service.ProductCreateDto
	if !h.bindJSON(w, r, mLogger, &productDTO) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, productDTO)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Reserve deducts the requested quantity from the product's stock if available.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	quantity, ok := web.ParsePathGte32(r, w, mLogger, "quantity", 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to reserve product", "ID", id, "quantity", quantity)

	outcome, err := h.stock.Reserve(r.Context(), id, quantity)
	if err != nil {
		h.respondStockError(w, r, mLogger, id, err)
		return
	}
	if outcome == service.OutcomeInsufficientStock {
		mLogger.InfoContext(r.Context(), "Insufficient stock for reservation", "ID", id, "quantity", quantity)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Insufficient quantity")
		return
	}
	mLogger.InfoContext(r.Context(), "Product reserved successfully", "ID", id, "quantity", quantity)
	web.RespondMessage(w, mLogger, http.StatusOK, "Product reserved")
}

// Restore adds the requested quantity back to the product's stock.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	quantity, ok := web.ParsePathGte32(r, w, mLogger, "quantity", 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to restore product quantity", "ID", id, "quantity", quantity)

	if _, err := h.stock.Restore(r.Context(), id, quantity); err != nil {
		h.respondStockError(w, r, mLogger, id, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product quantity restored successfully", "ID", id, "quantity", quantity)
	web.RespondMessage(w, mLogger, http.StatusOK, "Product quantity restored")
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondMessage(w, mLogger, http.StatusOK, fmt.Sprintf("Product with ID %s is deleted", id))
}

// DeleteAll deletes every product from the catalog.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to delete all products")
	if err := h.service.DeleteAll(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting all products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to delete products")
		return
	}
	mLogger.InfoContext(r.Context(), "All products deleted successfully")
	web.RespondMessage(w, mLogger, http.StatusOK, "All products are deleted")
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondStockError maps stock operation errors to HTTP responses.
// Contention is reported as 503 so clients know the request is retryable.
func (h *Handler) respondStockError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id any, err error) {
	switch {
	case errors.Is(err, cerrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found for stock operation", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, cerrors.ErrInvalidQuantity):
		mLogger.WarnContext(r.Context(), "Invalid quantity for stock operation", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Quantity must not be negative")
	case errors.Is(err, cerrors.ErrContention):
		mLogger.WarnContext(r.Context(), "Stock operation contention", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Stock is being updated concurrently, please retry")
	default:
		mLogger.ErrorContext(r.Context(), "Error performing stock operation", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update stock for product with ID %s", id))
	}
}

// bindJSON decodes the request body into dst and validates it.
// Responds with 400 and returns false when decoding or validation fails.
func (h *Handler) bindJSON(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
