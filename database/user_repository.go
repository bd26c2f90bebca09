package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thecoder877/Vrticko/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository manages user records
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(CollectionUsers),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("email already in use")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID looks up a user by ID. Returns nil without error when missing.
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// FindByEmail looks up a user by email. Returns nil without error when missing.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// FindIDsByRoles returns the IDs of every user whose role is in roles,
// in a stable order.
func (r *UserRepository) FindIDsByRoles(ctx context.Context, roles []string) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(opCtx, bson.M{"role": bson.M{"$in": roles}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer cursor.Close(opCtx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(opCtx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.Hex())
	}

	return ids, nil
}

// FindRolesByIDs returns the role of every listed user, keyed by ID hex
func (r *UserRepository) FindRolesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(opCtx, bson.M{"_id": bson.M{"$in": objIDs}},
		options.Find().SetProjection(bson.M{"_id": 1, "role": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer cursor.Close(opCtx)

	var rows []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Role string             `bson:"role"`
	}
	if err = cursor.All(opCtx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode user roles: %w", err)
	}

	roles := make(map[string]string, len(rows))
	for _, row := range rows {
		roles[row.ID.Hex()] = row.Role
	}

	return roles, nil
}
