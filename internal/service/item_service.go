package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewItemService(db *database.DB, logger *zerolog.Logger) *ItemService {
	return &ItemService{db: db, logger: logger}
}

// ItemInput is the creation payload. Available is a pointer: it must be
// set explicitly, a default would hide client mistakes.
type ItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   int64  `json:"requestId"`
}

// ItemPatch carries the updatable fields; nil means "leave as is".
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (s *ItemService) AddItem(ctx context.Context, ownerID int64, input ItemInput) (*models.Item, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: item description is required", ErrValidation)
	}
	if input.Available == nil {
		return nil, fmt.Errorf("%w: item availability is required", ErrValidation)
	}

	owner, err := resolveUser(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}

	if input.RequestID != 0 {
		if _, err := s.db.GetRequest(ctx, input.RequestID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, fmt.Errorf("%w: request %d", ErrNotFound, input.RequestID)
			}
			return nil, err
		}
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     owner.ID,
		RequestID:   input.RequestID,
	}
	if err := s.db.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", owner.ID).Msg("item created")
	return item, nil
}

// UpdateItem patches an item. Only the owner may update; владелец вещи
// задаётся при создании и не меняется.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID int64, patch ItemPatch) (*models.Item, error) {
	item, err := resolveItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	actor, err := resolveUser(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.db.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns the item detail view. The owner additionally sees the
// last and next approved bookings; comments are attached for everyone.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID int64) (*models.ItemView, error) {
	item, err := resolveItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	return s.buildItemView(ctx, viewerID, item)
}

// GetOwnerItems lists the caller's items with booking summaries and comments.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, page *models.Page) ([]*models.ItemView, error) {
	if _, err := resolveUser(ctx, s.db, ownerID); err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	items, err := s.db.GetOwnerItems(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.buildItemView(ctx, ownerID, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Search finds available items by substring match on name or description.
// Blank text yields an empty result, not an error.
func (s *ItemService) Search(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	items, err := s.db.SearchItems(ctx, text, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// AddComment stores a review. Only a booker whose booking of this item has
// already ended may comment.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.CommentView, error) {
	author, err := resolveUser(ctx, s.db, authorID)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	completed, err := s.db.HasCompletedBooking(ctx, item.ID, author.ID, now)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, fmt.Errorf("%w: user %d has not completed a booking of item %d", ErrValidation, author.ID, item.ID)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   item.ID,
		AuthorID: author.ID,
		Created:  now,
	}
	if err := s.db.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", item.ID).Msg("comment added")
	return &models.CommentView{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: author.Name,
		Created:    comment.Created,
	}, nil
}

func (s *ItemService) buildItemView(ctx context.Context, viewerID int64, item *models.Item) (*models.ItemView, error) {
	view := &models.ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
	}

	if viewerID == item.OwnerID {
		now := time.Now()
		last, err := s.db.GetLastBooking(ctx, item.ID, now)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		if last != nil {
			view.LastBooking = &models.BookingRef{ID: last.ID, BookerID: last.BookerID}
		}
		next, err := s.db.GetNextBooking(ctx, item.ID, now)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		if next != nil {
			view.NextBooking = &models.BookingRef{ID: next.ID, BookerID: next.BookerID}
		}
	}

	comments, err := s.db.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	view.Comments = make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		view.Comments = append(view.Comments, models.CommentView{
			ID:         c.ID,
			Text:       c.Text,
			AuthorName: c.AuthorName,
			Created:    c.Created,
		})
	}
	return view, nil
}
