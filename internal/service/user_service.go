package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewUserService(db *database.DB, logger *zerolog.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// UserPatch carries the updatable fields; nil means "leave as is".
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email %q is already in use", ErrConflict, user.Email)
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, patch UserPatch) (*models.User, error) {
	user, err := resolveUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}
	if err := s.checkEmailUnique(ctx, userID, user.Email); err != nil {
		return nil, err
	}
	if err := s.db.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email %q is already in use", ErrConflict, user.Email)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return resolveUser(ctx, s.db, userID)
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.db.DeleteUser(ctx, userID)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email %q is malformed", ErrValidation, email)
	}
	return nil
}

func (s *UserService) checkEmailUnique(ctx context.Context, userID int64, email string) error {
	users, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID != userID && u.Email == email {
			return fmt.Errorf("%w: email %q is already in use", ErrConflict, email)
		}
	}
	return nil
}
