package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"drishti/internal/database"
	"drishti/internal/models"
)

// SQLiteStore persists users and ideas in SQLite.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore creates a SQLite-backed store.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	user := newUser(req, passwordHash)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, email, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Password, user.Email, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, email, first_name, last_name, created_at, updated_at
		FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Email,
		&user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateIdea(ctx context.Context, userID string, req *models.CreateIdeaRequest) (*models.Idea, error) {
	idea := newIdea(userID, req)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, user_id, title, problem, solution, target_market,
			business_model, competition, team, viability_score, feedback,
			status, is_bookmarked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, idea.ID, idea.UserID, idea.Title, idea.Problem, idea.Solution, idea.TargetMarket,
		idea.BusinessModel, idea.Competition, idea.Team, idea.ViabilityScore, idea.Feedback,
		idea.Status, idea.IsBookmarked, idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	return idea, nil
}

const ideaColumns = `id, user_id, title, problem, solution, target_market,
	business_model, competition, team, viability_score, feedback,
	status, is_bookmarked, created_at, updated_at`

func (s *SQLiteStore) GetIdeas(ctx context.Context, userID string) ([]models.Idea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideas WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	ideas := []models.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}

func (s *SQLiteStore) GetIdea(ctx context.Context, userID, ideaID string) (*models.Idea, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideas WHERE id = ? AND user_id = ?
	`, ideaID, userID)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, ErrIdeaNotFound
	}
	if err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *SQLiteStore) UpdateIdea(ctx context.Context, userID, ideaID string, req *models.UpdateIdeaRequest) (*models.Idea, error) {
	idea, err := s.GetIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}

	applyUpdate(idea, req)

	result, err := s.db.ExecContext(ctx, `
		UPDATE ideas SET title = ?, problem = ?, solution = ?, target_market = ?,
			business_model = ?, competition = ?, team = ?, viability_score = ?,
			feedback = ?, status = ?, is_bookmarked = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, idea.Title, idea.Problem, idea.Solution, idea.TargetMarket,
		idea.BusinessModel, idea.Competition, idea.Team, idea.ViabilityScore,
		idea.Feedback, idea.Status, idea.IsBookmarked, idea.UpdatedAt,
		ideaID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrIdeaNotFound
	}
	return idea, nil
}

func (s *SQLiteStore) DeleteIdea(ctx context.Context, userID, ideaID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM ideas WHERE id = ? AND user_id = ?
	`, ideaID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete idea: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIdea(row scanner) (*models.Idea, error) {
	var idea models.Idea
	var score sql.NullInt64
	err := row.Scan(&idea.ID, &idea.UserID, &idea.Title, &idea.Problem,
		&idea.Solution, &idea.TargetMarket, &idea.BusinessModel,
		&idea.Competition, &idea.Team, &score, &idea.Feedback,
		&idea.Status, &idea.IsBookmarked, &idea.CreatedAt, &idea.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan idea: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		idea.ViabilityScore = &v
	}
	return &idea, nil
}
