// Package seed inserts example profiles into the users collection.
//
// Profiles follow the looser example schema: name is required, email is
// optional but unique, createdAt defaults to the insertion time and any
// other input field (age) is dropped.
package seed

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/crudusers/users-service/internal/users"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "db1"

// Profile is a document written by the seed command.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Version   int                `bson:"__v" json:"__v"`
}

// Input is what callers may supply; Age is accepted and discarded.
type Input struct {
	Name  string
	Email string
	Age   *float64
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// Store writes profiles to a collection.
type Store struct {
	col *mongo.Collection
	now func() time.Time
}

func NewStore(col *mongo.Collection) *Store {
	return &Store{col: col, now: time.Now}
}

// EnsureIndexes creates the unique email index if it does not exist yet.
func (s *Store) EnsureIndexes(ctx context.Context) (string, error) {
	name, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return "", fmt.Errorf("create email index: %w", err)
	}
	return name, nil
}

// Create validates in, fills defaults and inserts the profile.
func (s *Store) Create(ctx context.Context, in Input) (*Profile, error) {
	p := &Profile{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := validate.Struct(p); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			paths := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				paths = append(paths, fe.Field())
			}
			return nil, users.RequiredFieldsError(users.ModelName, paths...)
		}
		return nil, err
	}
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
