package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/platform/httpx"
	"github.com/greenfeen/storefront/internal/services"
)

// ProductHandlers exposes the shop page listing with its category filter.
type ProductHandlers struct {
	catalog services.CatalogService
}

// NewProductHandlers constructs handlers over the catalog service.
func NewProductHandlers(catalog services.CatalogService) *ProductHandlers {
	return &ProductHandlers{catalog: catalog}
}

// Routes wires the /products endpoints onto the provided router.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
}

type productPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Category  string `json:"category"`
}

type productListResponse struct {
	Products []productPayload `json:"products"`
	Category string           `json:"category"`
	Summary  string           `json:"summary"`
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.catalog.Filter(ctx, r.URL.Query().Get("category"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog is temporarily unavailable", http.StatusServiceUnavailable))
		return
	}

	products := make([]productPayload, 0, len(result.Products))
	for _, product := range result.Products {
		products = append(products, productPayload{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: domain.FormatGBP(product.UnitPrice),
			Category:  product.Category,
		})
	}

	writeJSONResponse(w, http.StatusOK, productListResponse{
		Products: products,
		Category: result.Category,
		Summary:  result.Summary,
	})
}
