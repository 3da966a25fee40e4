package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

var (
	ErrInvalidStation  = errors.New("invalid preparation station")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrNameRequired    = errors.New("name is required")
	ErrCatalogNotFound = errors.New("menu item not found in catalog")
)

// MenuItemInput carries the editable fields of a catalog entry.
type MenuItemInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	BasePrice   decimal.Decimal
	Modifiers   []domain.Modifier
	ImageURL    string
	Station     string
}

// MenuService manages the menu catalog. Create, edit and delete are
// privileged: they run through the permission gate and may park behind a
// manager override. Availability toggles are unrestricted but audited.
type MenuService struct {
	store *store.Store
	audit *audit.Log
	authz *Authorizer
}

func NewMenuService(st *store.Store, auditLog *audit.Log, authz *Authorizer) *MenuService {
	s := &MenuService{store: st, audit: auditLog, authz: authz}
	authz.RegisterExecutor(enum.ActionAddMenuItem, s.executeSave)
	authz.RegisterExecutor(enum.ActionEditMenuItem, s.executeSave)
	authz.RegisterExecutor(enum.ActionDeleteMenuItem, s.executeDelete)
	return s
}

func (s *MenuService) List() []domain.MenuItem {
	return s.store.ListMenuItems()
}

func (s *MenuService) Categories() []domain.Category {
	return s.store.ListCategories()
}

func (s *MenuService) Get(id uuid.UUID) (domain.MenuItem, error) {
	m, ok := s.store.GetMenuItem(id)
	if !ok {
		return domain.MenuItem{}, ErrCatalogNotFound
	}
	return m, nil
}

// Create adds a catalog entry. The full item (id included) is built up front
// and carried in the command payload, so a deferred create needs no further
// input at approval time.
func (s *MenuService) Create(actor domain.Actor, input MenuItemInput) (*domain.MenuItem, *PendingOverride, error) {
	if err := validateMenuInput(input); err != nil {
		return nil, nil, err
	}
	item := &domain.MenuItem{
		ID:          uuid.New(),
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Modifiers:   append([]domain.Modifier(nil), input.Modifiers...),
		ImageURL:    input.ImageURL,
		Station:     input.Station,
		IsAvailable: true,
	}

	pending, err := s.authz.Request(actor, true, Command{
		Action:     enum.ActionAddMenuItem,
		MenuItemID: item.ID,
		MenuItem:   item,
	})
	if err != nil {
		return nil, nil, err
	}
	if pending != nil {
		return nil, pending, nil
	}
	return item, nil, nil
}

// Update replaces the editable fields of an existing entry, keeping its
// availability flag (availability toggles independently of edits).
func (s *MenuService) Update(actor domain.Actor, id uuid.UUID, input MenuItemInput) (*domain.MenuItem, *PendingOverride, error) {
	if err := validateMenuInput(input); err != nil {
		return nil, nil, err
	}
	current, ok := s.store.GetMenuItem(id)
	if !ok {
		return nil, nil, ErrCatalogNotFound
	}

	item := &domain.MenuItem{
		ID:          id,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Modifiers:   append([]domain.Modifier(nil), input.Modifiers...),
		ImageURL:    input.ImageURL,
		Station:     input.Station,
		IsAvailable: current.IsAvailable,
	}

	pending, err := s.authz.Request(actor, true, Command{
		Action:     enum.ActionEditMenuItem,
		MenuItemID: id,
		MenuItem:   item,
	})
	if err != nil {
		return nil, nil, err
	}
	if pending != nil {
		return nil, pending, nil
	}
	return item, nil, nil
}

// Delete removes a catalog entry. Already-ordered items keep their modifier
// copies and snapshot names, so history is unaffected.
func (s *MenuService) Delete(actor domain.Actor, id uuid.UUID) (*PendingOverride, error) {
	if _, ok := s.store.GetMenuItem(id); !ok {
		return nil, ErrCatalogNotFound
	}
	return s.authz.Request(actor, true, Command{
		Action:     enum.ActionDeleteMenuItem,
		MenuItemID: id,
	})
}

// ToggleAvailability flips the stock flag. Not gated, but audited.
func (s *MenuService) ToggleAvailability(actor domain.Actor, id uuid.UUID) (*domain.MenuItem, error) {
	m, ok := s.store.GetMenuItem(id)
	if !ok {
		return nil, ErrCatalogNotFound
	}
	m.IsAvailable = !m.IsAvailable
	s.store.PutMenuItem(m)

	state := "Out of Stock"
	if m.IsAvailable {
		state = "Available"
	}
	s.audit.Append(actor, enum.ActionStockUpdate,
		fmt.Sprintf("Item %q marked as %s", m.Name, state), enum.SeverityMedium)
	return &m, nil
}

// SetImage attaches a validated image (data URI or URL) to a catalog entry.
func (s *MenuService) SetImage(actor domain.Actor, id uuid.UUID, imageURL string) (*domain.MenuItem, error) {
	m, ok := s.store.GetMenuItem(id)
	if !ok {
		return nil, ErrCatalogNotFound
	}
	m.ImageURL = imageURL
	s.store.PutMenuItem(m)
	return &m, nil
}

func (s *MenuService) executeSave(actor domain.Actor, cmd Command) error {
	if cmd.MenuItem == nil {
		return ErrCatalogNotFound
	}
	verb := "added to"
	if cmd.Action == enum.ActionEditMenuItem {
		if _, ok := s.store.GetMenuItem(cmd.MenuItemID); !ok {
			return ErrCatalogNotFound
		}
		verb = "updated in"
	}
	s.store.PutMenuItem(*cmd.MenuItem)
	s.audit.Append(actor, enum.ActionMenuModified,
		fmt.Sprintf("Item %q %s menu", cmd.MenuItem.Name, verb), enum.SeverityMedium)
	return nil
}

func (s *MenuService) executeDelete(actor domain.Actor, cmd Command) error {
	m, ok := s.store.GetMenuItem(cmd.MenuItemID)
	if !ok {
		return ErrCatalogNotFound
	}
	s.store.DeleteMenuItem(cmd.MenuItemID)
	s.audit.Append(actor, enum.ActionMenuModified,
		fmt.Sprintf("Item %q removed from menu", m.Name), enum.SeverityMedium)
	return nil
}

func validateMenuInput(input MenuItemInput) error {
	if input.Name == "" {
		return ErrNameRequired
	}
	if input.BasePrice.IsNegative() {
		return ErrInvalidPrice
	}
	if !enum.ValidStation(input.Station) {
		return ErrInvalidStation
	}
	for _, m := range input.Modifiers {
		if m.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}
