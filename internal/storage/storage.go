// Package storage defines the persistence contract for users and ideas and
// provides MongoDB and SQLite backends that satisfy it.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"drishti/internal/models"
	"drishti/internal/scoring"
)

// Domain errors surfaced to the HTTP layer.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrIdeaNotFound is returned when an idea does not exist or is owned by
	// someone else. The two cases are indistinguishable on purpose.
	ErrIdeaNotFound = errors.New("idea not found")
	// ErrUsernameTaken is returned when registering a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
)

// Store is the persistence contract. All idea operations are scoped by the
// owning user: an idea is never visible, editable or deletable through
// another user's ID.
type Store interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateIdea(ctx context.Context, userID string, req *models.CreateIdeaRequest) (*models.Idea, error)
	GetIdeas(ctx context.Context, userID string) ([]models.Idea, error)
	GetIdea(ctx context.Context, userID, ideaID string) (*models.Idea, error)
	UpdateIdea(ctx context.Context, userID, ideaID string, req *models.UpdateIdeaRequest) (*models.Idea, error)
	DeleteIdea(ctx context.Context, userID, ideaID string) (bool, error)
}

// newUser builds a user record from a registration request and a
// pre-computed password hash.
func newUser(req *models.RegisterRequest, passwordHash string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Password:  passwordHash,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newIdea builds a scored idea record. Submission completes the idea
// immediately: scoring is synchronous, there is no draft-then-score path.
func newIdea(userID string, req *models.CreateIdeaRequest) *models.Idea {
	now := time.Now().UTC()
	idea := &models.Idea{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         req.Title,
		Problem:       req.Problem,
		Solution:      req.Solution,
		TargetMarket:  req.TargetMarket,
		BusinessModel: req.BusinessModel,
		Competition:   req.Competition,
		Team:          req.Team,
		Status:        models.IdeaStatusCompleted,
		IsBookmarked:  req.IsBookmarked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	rescore(idea)
	return idea
}

// rescore recomputes the derived score and feedback from the idea's current
// content fields. They are never written independently of each other.
func rescore(idea *models.Idea) {
	res := scoring.Score(idea.ScoringInput())
	score := res.Score
	idea.ViabilityScore = &score
	idea.Feedback = res.Feedback
}

// applyUpdate merges a patch onto an idea, rescoring when any scored field
// was part of the patch, and bumps updatedAt.
func applyUpdate(idea *models.Idea, req *models.UpdateIdeaRequest) {
	req.ApplyTo(idea)
	if req.TouchesScoredFields() {
		rescore(idea)
	}
	idea.UpdatedAt = time.Now().UTC()
}
