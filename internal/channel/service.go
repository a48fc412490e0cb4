package channel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"appupdate-service/internal/apperror"
	"appupdate-service/internal/channel/entity"
)

// Repository is the persistence surface the channel flows need.
type Repository interface {
	Create(ctx context.Context, c *entity.Channel) error
	GetByNameAndOwner(ctx context.Context, name string, userID uuid.UUID) (*entity.Channel, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*entity.Channel, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (int64, error)
	Purge(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service encapsulates channel business logic.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Create adds a channel for owner, rejecting duplicate live names per owner.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, name string) (*entity.Channel, error) {
	if name == "" {
		return nil, apperror.BadRequest("channel name must not be empty")
	}
	_, err := s.repo.GetByNameAndOwner(ctx, name, owner)
	if err == nil {
		return nil, apperror.BadRequest(fmt.Sprintf("channel '%s' already exists", name))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Internal("failed to look up channel", err)
	}

	now := time.Now()
	c := &entity.Channel{
		ID:           uuid.New(),
		ChannelName:  name,
		CreateUserID: owner,
		CreateTime:   now,
		UpdateTime:   now,
		IsDelete:     false,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperror.Internal("failed to create channel", err)
	}
	return c, nil
}

// List returns the owner's live channels.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*entity.Channel, error) {
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal("failed to list channels", err)
	}
	return rows, nil
}

// Rename changes a channel's name; unknown ids are NotFound.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return apperror.BadRequest("channel name must not be empty")
	}
	n, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		return apperror.Internal("failed to update channel", err)
	}
	if n == 0 {
		return apperror.NotFound(fmt.Sprintf("channel '%s' not found", id))
	}
	return nil
}

// Delete soft-deletes a channel; unknown ids are NotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return apperror.Internal("failed to delete channel", err)
	}
	if n == 0 {
		return apperror.NotFound(fmt.Sprintf("channel '%s' not found", id))
	}
	return nil
}

// Purge permanently removes a channel; unknown ids are NotFound.
func (s *Service) Purge(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.Purge(ctx, id)
	if err != nil {
		return apperror.Internal("failed to purge channel", err)
	}
	if n == 0 {
		return apperror.NotFound(fmt.Sprintf("channel '%s' not found", id))
	}
	return nil
}
