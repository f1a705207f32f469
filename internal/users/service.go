package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/crudusers/users-service/internal/models"
	"github.com/crudusers/users-service/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns every stored user in store order.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// Create runs the schema step on in and inserts the result.
func (s *Service) Create(ctx context.Context, in Input) (*models.User, error) {
	u, err := newUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update fetches the user, replaces each field for which in carries a truthy
// value and saves the result. Falsy values (0, "", false, null) are ignored.
// The fetch and save are not atomic: concurrent updates of one id race and
// the last save wins.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	u, err := mergeUser(cur, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			// deleted between fetch and save; not a lookup miss
			return nil, fmt.Errorf("No document found for query \"{ _id: '%s' }\" on model %q", id, ModelName)
		}
		return nil, err
	}
	return u, nil
}

// Delete fetches the user and removes it.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	u, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return err
	}
	logger.Debugf("deleting user %s (%s)", u.ID.Hex(), u.Email)
	if err := s.repo.Delete(ctx, oid); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &CastError{Kind: "ObjectId", Value: id, Path: "_id", Model: ModelName}
	}
	return oid, nil
}
