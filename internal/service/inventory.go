package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory-audit-api/internal/model"
	"inventory-audit-api/internal/repository"

	"github.com/rs/zerolog/log"
)

// DeleteMode selects between flagging and physically removing an item.
type DeleteMode string

const (
	DeleteSoft DeleteMode = "soft"
	DeleteHard DeleteMode = "hard"
)

// ParseDeleteMode maps a query value to a mode. Anything but "hard" is soft.
func ParseDeleteMode(s string) DeleteMode {
	if strings.EqualFold(strings.TrimSpace(s), string(DeleteHard)) {
		return DeleteHard
	}
	return DeleteSoft
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// InventoryService handles inventory business logic.
// Every mutation reads the row first, writes, re-reads, then records an audit entry.
type InventoryService struct {
	repo  repository.InventoryRepository
	audit Recorder
	now   func() time.Time
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.InventoryRepository, audit Recorder) *InventoryService {
	if repo == nil {
		return nil
	}
	return &InventoryService{
		repo:  repo,
		audit: audit,
		now:   defaultNow,
	}
}

// List returns non-deleted items matching every provided filter.
func (s *InventoryService) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a non-deleted item.
func (s *InventoryService) Get(ctx context.Context, id int64) (*model.Item, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts an item and records a CREATE audit entry.
func (s *InventoryService) Create(ctx context.Context, item model.NewItem, reason *string) (*model.Item, error) {
	if err := checkStruct(item, "name and sku required"); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, item, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading created item: %w", err)
	}

	s.record(ctx, id, model.ActionCreate, nil, created, reason)
	return created, nil
}

// Update applies a partial update to an item in any deleted state.
func (s *InventoryService) Update(ctx context.Context, id int64, patch model.ItemPatch, reason *string) (*model.Item, error) {
	before, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(patch) == 0 {
		return nil, invalid("No updatable fields provided")
	}
	for _, f := range patch {
		if f.Column != "name" && f.Column != "sku" {
			continue
		}
		if v, _ := f.Value.(string); v == "" {
			return nil, invalid(f.Column + " cannot be empty")
		}
	}

	log.Debug().Int64("id", id).Strs("columns", patch.Columns()).Msg("updating inventory item")
	if err := s.repo.Update(ctx, id, patch, s.now()); err != nil {
		return nil, err
	}

	after, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading updated item: %w", err)
	}

	s.record(ctx, id, model.ActionUpdate, before, after, reason)
	return after, nil
}

// AdjustQuantity adds delta to an item's quantity. Negative results are allowed.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id int64, delta int64, reason *string) (*model.Item, error) {
	before, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AdjustQuantity(ctx, id, delta, s.now()); err != nil {
		return nil, err
	}

	after, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading adjusted item: %w", err)
	}

	s.record(ctx, id, model.ActionQtyAdjust, before, after, reason)
	return after, nil
}

// Remove soft- or hard-deletes an item. Soft-deleted items can still be removed again.
func (s *InventoryService) Remove(ctx context.Context, id int64, mode DeleteMode, reason *string) (*DeleteResult, error) {
	before, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if mode == DeleteHard {
		if err := s.repo.HardDelete(ctx, id); err != nil {
			return nil, err
		}
		s.record(ctx, id, model.ActionDelete, before, nil, reason)
	} else {
		if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
			return nil, err
		}
		s.record(ctx, id, model.ActionSoftDelete, before, nil, reason)
	}

	return &DeleteResult{Deleted: true}, nil
}

// Stats returns inventory statistics.
func (s *InventoryService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

func (s *InventoryService) record(ctx context.Context, id int64, action model.AuditAction, before, after *model.Item, reason *string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, id, action, before, after, reason)
}
