package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltstore/storefront/internal/domain/product"
)

type productResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(list))
	for i := range list {
		out[i] = h.toProductResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(p))
}

func (h *Handler) toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		Image:       h.imageURL(p.Image),
		Description: p.Description,
	}
}
