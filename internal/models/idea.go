package models

import (
	"errors"
	"strings"
	"time"

	"drishti/internal/scoring"
)

// IdeaStatus tracks the lifecycle of an idea.
type IdeaStatus string

const (
	IdeaStatusDraft     IdeaStatus = "draft"
	IdeaStatusCompleted IdeaStatus = "completed"
	IdeaStatusArchived  IdeaStatus = "archived"
)

// Idea is a user-submitted startup concept. ViabilityScore and Feedback are
// derived from the six text fields and always recomputed together.
type Idea struct {
	ID             string     `bson:"_id" json:"id"`
	UserID         string     `bson:"userId" json:"userId"`
	Title          string     `bson:"title" json:"title"`
	Problem        string     `bson:"problem" json:"problem"`
	Solution       string     `bson:"solution" json:"solution"`
	TargetMarket   string     `bson:"targetMarket" json:"targetMarket"`
	BusinessModel  string     `bson:"businessModel" json:"businessModel"`
	Competition    string     `bson:"competition" json:"competition"`
	Team           string     `bson:"team" json:"team"`
	ViabilityScore *int       `bson:"viabilityScore,omitempty" json:"viabilityScore"`
	Feedback       string     `bson:"feedback,omitempty" json:"feedback"`
	Status         IdeaStatus `bson:"status" json:"status"`
	IsBookmarked   bool       `bson:"isBookmarked" json:"isBookmarked"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// ScoringInput maps the idea's content fields onto the scoring engine input.
func (i *Idea) ScoringInput() scoring.Input {
	return scoring.Input{
		Problem:       &i.Problem,
		Solution:      &i.Solution,
		TargetMarket:  &i.TargetMarket,
		BusinessModel: &i.BusinessModel,
		Competition:   &i.Competition,
		Team:          &i.Team,
	}
}

// CreateIdeaRequest is the request body for POST /api/ideas.
type CreateIdeaRequest struct {
	Title         string `json:"title"`
	Problem       string `json:"problem"`
	Solution      string `json:"solution"`
	TargetMarket  string `json:"targetMarket"`
	BusinessModel string `json:"businessModel"`
	Competition   string `json:"competition"`
	Team          string `json:"team"`
	IsBookmarked  bool   `json:"isBookmarked,omitempty"`
}

// Validate enforces the minimum field lengths and returns the first failing
// constraint.
func (r *CreateIdeaRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("Title is required")
	}
	if len(r.Problem) < 10 {
		return errors.New("Problem description must be at least 10 characters")
	}
	if len(r.Solution) < 10 {
		return errors.New("Solution description must be at least 10 characters")
	}
	if len(r.TargetMarket) < 5 {
		return errors.New("Target market must be at least 5 characters")
	}
	if len(r.Team) < 5 {
		return errors.New("Team description must be at least 5 characters")
	}
	if len(r.BusinessModel) < 10 {
		return errors.New("Business model must be at least 10 characters")
	}
	if len(r.Competition) < 10 {
		return errors.New("Competition analysis must be at least 10 characters")
	}
	return nil
}

// UpdateIdeaRequest is the request body for PUT /api/ideas/:id. Nil fields
// are left untouched by the update.
type UpdateIdeaRequest struct {
	Title         *string     `json:"title,omitempty"`
	Problem       *string     `json:"problem,omitempty"`
	Solution      *string     `json:"solution,omitempty"`
	TargetMarket  *string     `json:"targetMarket,omitempty"`
	BusinessModel *string     `json:"businessModel,omitempty"`
	Competition   *string     `json:"competition,omitempty"`
	Team          *string     `json:"team,omitempty"`
	Status        *IdeaStatus `json:"status,omitempty"`
	IsBookmarked  *bool       `json:"isBookmarked,omitempty"`
}

// Validate applies the create-time constraints to whichever fields are
// present in the patch.
func (r *UpdateIdeaRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("Title is required")
	}
	if r.Problem != nil && len(*r.Problem) < 10 {
		return errors.New("Problem description must be at least 10 characters")
	}
	if r.Solution != nil && len(*r.Solution) < 10 {
		return errors.New("Solution description must be at least 10 characters")
	}
	if r.TargetMarket != nil && len(*r.TargetMarket) < 5 {
		return errors.New("Target market must be at least 5 characters")
	}
	if r.Team != nil && len(*r.Team) < 5 {
		return errors.New("Team description must be at least 5 characters")
	}
	if r.BusinessModel != nil && len(*r.BusinessModel) < 10 {
		return errors.New("Business model must be at least 10 characters")
	}
	if r.Competition != nil && len(*r.Competition) < 10 {
		return errors.New("Competition analysis must be at least 10 characters")
	}
	if r.Status != nil {
		switch *r.Status {
		case IdeaStatusDraft, IdeaStatusCompleted, IdeaStatusArchived:
		default:
			return errors.New("Status must be one of draft, completed, archived")
		}
	}
	return nil
}

// TouchesScoredFields reports whether the patch includes any of the six
// fields the viability score is derived from. An explicitly provided empty
// string counts: it changes the content, so it changes the score.
func (r *UpdateIdeaRequest) TouchesScoredFields() bool {
	return r.Problem != nil || r.Solution != nil || r.TargetMarket != nil ||
		r.BusinessModel != nil || r.Competition != nil || r.Team != nil
}

// ApplyTo merges the patch onto an existing idea. Score, feedback and
// updatedAt are the caller's responsibility.
func (r *UpdateIdeaRequest) ApplyTo(idea *Idea) {
	if r.Title != nil {
		idea.Title = *r.Title
	}
	if r.Problem != nil {
		idea.Problem = *r.Problem
	}
	if r.Solution != nil {
		idea.Solution = *r.Solution
	}
	if r.TargetMarket != nil {
		idea.TargetMarket = *r.TargetMarket
	}
	if r.BusinessModel != nil {
		idea.BusinessModel = *r.BusinessModel
	}
	if r.Competition != nil {
		idea.Competition = *r.Competition
	}
	if r.Team != nil {
		idea.Team = *r.Team
	}
	if r.Status != nil {
		idea.Status = *r.Status
	}
	if r.IsBookmarked != nil {
		idea.IsBookmarked = *r.IsBookmarked
	}
}
