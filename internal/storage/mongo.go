package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"drishti/internal/database"
	"drishti/internal/models"
)

// MongoStore persists users and ideas in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	ideas *mongo.Collection
}

// NewMongoStore creates a Mongo-backed store.
func NewMongoStore(db *database.MongoDB) *MongoStore {
	return &MongoStore{
		users: db.Collection(database.CollectionUsers),
		ideas: db.Collection(database.CollectionIdeas),
	}
}

func (s *MongoStore) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	user := newUser(req, passwordHash)
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateIdea(ctx context.Context, userID string, req *models.CreateIdeaRequest) (*models.Idea, error) {
	idea := newIdea(userID, req)
	if _, err := s.ideas.InsertOne(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	return idea, nil
}

func (s *MongoStore) GetIdeas(ctx context.Context, userID string) ([]models.Idea, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.ideas.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer cursor.Close(ctx)

	ideas := []models.Idea{}
	if err := cursor.All(ctx, &ideas); err != nil {
		return nil, fmt.Errorf("failed to decode ideas: %w", err)
	}
	return ideas, nil
}

func (s *MongoStore) GetIdea(ctx context.Context, userID, ideaID string) (*models.Idea, error) {
	var idea models.Idea
	err := s.ideas.FindOne(ctx, bson.M{"_id": ideaID, "userId": userID}).Decode(&idea)
	if err == mongo.ErrNoDocuments {
		return nil, ErrIdeaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return &idea, nil
}

func (s *MongoStore) UpdateIdea(ctx context.Context, userID, ideaID string, req *models.UpdateIdeaRequest) (*models.Idea, error) {
	idea, err := s.GetIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}

	applyUpdate(idea, req)

	// Concurrent updates race at the storage layer with last-write-wins
	// semantics; the owner filter keeps the replace scoped regardless.
	result, err := s.ideas.ReplaceOne(ctx, bson.M{"_id": ideaID, "userId": userID}, idea)
	if err != nil {
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrIdeaNotFound
	}
	return idea, nil
}

func (s *MongoStore) DeleteIdea(ctx context.Context, userID, ideaID string) (bool, error) {
	result, err := s.ideas.DeleteOne(ctx, bson.M{"_id": ideaID, "userId": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete idea: %w", err)
	}
	return result.DeletedCount > 0, nil
}
