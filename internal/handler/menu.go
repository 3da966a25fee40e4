package handler

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
)

const maxImageBytes = 2 << 20 // 2 MB

// MenuServicer defines the service methods needed by menu handlers.
// Satisfied by *service.MenuService; narrow interface for testability.
type MenuServicer interface {
	List() []domain.MenuItem
	Categories() []domain.Category
	Get(id uuid.UUID) (domain.MenuItem, error)
	Create(actor domain.Actor, input service.MenuItemInput) (*domain.MenuItem, *service.PendingOverride, error)
	Update(actor domain.Actor, id uuid.UUID, input service.MenuItemInput) (*domain.MenuItem, *service.PendingOverride, error)
	Delete(actor domain.Actor, id uuid.UUID) (*service.PendingOverride, error)
	ToggleAvailability(actor domain.Actor, id uuid.UUID) (*domain.MenuItem, error)
	SetImage(actor domain.Actor, id uuid.UUID, imageURL string) (*domain.MenuItem, error)
}

// MenuHandler handles menu catalog endpoints.
type MenuHandler struct {
	svc MenuServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterReadRoutes registers the catalog reads every role may use.
func (h *MenuHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Get("/menu/categories", h.ListCategories)
	r.Get("/menu/{id}", h.Get)
}

// RegisterWriteRoutes registers the catalog mutations.
func (h *MenuHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/menu", h.Create)
	r.Put("/menu/{id}", h.Update)
	r.Delete("/menu/{id}", h.Delete)
	r.Post("/menu/{id}/availability", h.ToggleAvailability)
	r.Post("/menu/{id}/image", h.UploadImage)
}

// --- Request / Response types ---

type menuItemRequest struct {
	CategoryID  string            `json:"category_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	BasePrice   string            `json:"base_price"`
	Modifiers   []modifierRequest `json:"modifiers"`
	Station     string            `json:"station"`
}

type modifierRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	CategoryID  uuid.UUID         `json:"category_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	BasePrice   string            `json:"base_price"`
	Modifiers   []domain.Modifier `json:"modifiers"`
	ImageURL    string            `json:"image_url,omitempty"`
	Station     string            `json:"station"`
	IsAvailable bool              `json:"is_available"`
}

type categoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon"`
}

func toMenuItemResponse(m domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		BasePrice:   m.BasePrice.StringFixed(2),
		Modifiers:   m.Modifiers,
		ImageURL:    m.ImageURL,
		Station:     m.Station,
		IsAvailable: m.IsAvailable,
	}
}

// --- Handlers ---

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.svc.List()
	out := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMenuItemResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats := h.svc.Categories()
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(m))
}

// Create adds a catalog entry. Non-manager callers get a 202 with the pending
// override instead of the item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	input, ok := decodeMenuInput(w, r)
	if !ok {
		return
	}
	item, pending, err := h.svc.Create(actor, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending != nil {
		writeJSON(w, http.StatusAccepted, toPendingResponse(pending))
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(*item))
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	input, ok := decodeMenuInput(w, r)
	if !ok {
		return
	}
	item, pending, err := h.svc.Update(actor, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending != nil {
		writeJSON(w, http.StatusAccepted, toPendingResponse(pending))
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(*item))
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	pending, err := h.svc.Delete(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending != nil {
		writeJSON(w, http.StatusAccepted, toPendingResponse(pending))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *MenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.svc.ToggleAvailability(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(*m))
}

// UploadImage accepts a multipart JPEG or PNG up to 2 MB and stores it as a
// data URI on the catalog entry.
func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+4096)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "image exceeds 2MB limit"})
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read image"})
		return
	}
	if len(data) > maxImageBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "image exceeds 2MB limit"})
		return
	}

	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "only JPEG and PNG images are accepted"})
		return
	}

	dataURI := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	m, err := h.svc.SetImage(actor, id, dataURI)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(*m))
}

// --- Helpers ---

func decodeMenuInput(w http.ResponseWriter, r *http.Request) (service.MenuItemInput, bool) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return service.MenuItemInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return service.MenuItemInput{}, false
	}
	price, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid base_price"})
		return service.MenuItemInput{}, false
	}

	mods := make([]domain.Modifier, 0, len(req.Modifiers))
	for _, m := range req.Modifiers {
		p, err := decimal.NewFromString(m.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid modifier price"})
			return service.MenuItemInput{}, false
		}
		mods = append(mods, domain.Modifier{ID: uuid.New(), Name: m.Name, Price: p})
	}

	return service.MenuItemInput{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   price,
		Modifiers:   mods,
		Station:     req.Station,
	}, true
}
