package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

// CatalogModel is one selectable model as shown to clients.
type CatalogModel struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// CatalogResponse for GET /api/catalog
type CatalogResponse struct {
	Models             []CatalogModel `json:"models"`
	KnowledgeBases     []string       `json:"knowledge_bases"`
	MaxSelected        int            `json:"max_selected"`
	DefaultTemperature float64        `json:"default_temperature"`
	CurrencyCode       string         `json:"currency_code"`
}

// CatalogHandler serves the model registry and knowledge-base list.
type CatalogHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(cfg *config.Config, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.Get)
}

// Get handles GET /api/catalog. Registry order is display order.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := CatalogResponse{
		Models:             make([]CatalogModel, 0, len(h.cfg.Models)),
		KnowledgeBases:     make([]string, 0, len(h.cfg.KnowledgeBases)),
		MaxSelected:        services.MaxSelectedModels,
		DefaultTemperature: services.DefaultTemperature,
		CurrencyCode:       h.cfg.Invocation.CurrencyCode,
	}
	for _, m := range h.cfg.Models {
		resp.Models = append(resp.Models, CatalogModel{
			Key:         m.Key,
			DisplayName: m.DisplayName,
			Icon:        m.Icon,
			Color:       m.Color,
		})
	}
	for _, kb := range h.cfg.KnowledgeBases {
		resp.KnowledgeBases = append(resp.KnowledgeBases, kb.Label)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: resp}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
