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

type RequestService struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewRequestService(db *database.DB, logger *zerolog.Logger) *RequestService {
	return &RequestService{db: db, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	requestor, err := resolveUser(ctx, s.db, requestorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: request description is required", ErrValidation)
	}

	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestor.ID,
		Created:     time.Now(),
	}
	if err := s.db.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestor.ID).Msg("item request created")
	return request, nil
}

// GetOwn lists the caller's requests, newest first, with the items offered
// in response.
func (s *RequestService) GetOwn(ctx context.Context, requestorID int64) ([]*models.RequestView, error) {
	requestor, err := resolveUser(ctx, s.db, requestorID)
	if err != nil {
		return nil, err
	}
	requests, err := s.db.GetRequestsByRequestor(ctx, requestor.ID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, requests)
}

// GetOthers lists other users' requests, newest first.
func (s *RequestService) GetOthers(ctx context.Context, userID int64, page *models.Page) ([]*models.RequestView, error) {
	user, err := resolveUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}
	requests, err := s.db.GetOtherRequests(ctx, user.ID, page)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.RequestView, error) {
	if _, err := resolveUser(ctx, s.db, userID); err != nil {
		return nil, err
	}
	if requestID == 0 {
		return nil, fmt.Errorf("%w: request id is required", ErrValidation)
	}
	request, err := s.db.GetRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RequestService) buildViews(ctx context.Context, requests []*models.ItemRequest) ([]*models.RequestView, error) {
	views := make([]*models.RequestView, 0, len(requests))
	for _, r := range requests {
		items, err := s.db.GetItemsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		view := &models.RequestView{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       make([]models.Item, 0, len(items)),
		}
		for _, item := range items {
			view.Items = append(view.Items, *item)
		}
		views = append(views, view)
	}
	return views, nil
}
