package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"drishti/internal/middleware"
	"drishti/internal/models"
	"drishti/internal/storage"
)

var (
	ideasScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drishti_ideas_scored_total",
		Help: "Number of viability scoring runs (creates and rescoring updates).",
	})
	viabilityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "drishti_viability_score",
		Help:    "Distribution of computed viability scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

// IdeaHandler handles idea CRUD. Every operation is scoped to the
// authenticated user.
type IdeaHandler struct {
	store storage.Store
}

// NewIdeaHandler creates a new idea handler.
func NewIdeaHandler(store storage.Store) *IdeaHandler {
	return &IdeaHandler{store: store}
}

// Create submits a new idea; scoring runs synchronously.
// POST /api/ideas
func (h *IdeaHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req models.CreateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid idea data",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	idea, err := h.store.CreateIdea(c.Context(), user.ID, &req)
	if err != nil {
		log.Printf("❌ Error creating idea: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create idea",
		})
	}

	observeScore(idea)

	return c.Status(fiber.StatusCreated).JSON(idea)
}

// List returns the caller's ideas, newest-updated first.
// GET /api/ideas
func (h *IdeaHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	ideas, err := h.store.GetIdeas(c.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Error fetching ideas: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch ideas",
		})
	}

	return c.JSON(ideas)
}

// Get returns a single idea owned by the caller.
// GET /api/ideas/:id
func (h *IdeaHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	idea, err := h.store.GetIdea(c.Context(), user.ID, c.Params("id"))
	if err == storage.ErrIdeaNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Idea not found",
		})
	}
	if err != nil {
		log.Printf("❌ Error fetching idea: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch idea",
		})
	}

	return c.JSON(idea)
}

// Update merges a partial update onto an idea, rescoring when content
// fields changed.
// PUT /api/ideas/:id
func (h *IdeaHandler) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req models.UpdateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid update data",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	idea, err := h.store.UpdateIdea(c.Context(), user.ID, c.Params("id"), &req)
	if err == storage.ErrIdeaNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Idea not found",
		})
	}
	if err != nil {
		log.Printf("❌ Error updating idea: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update idea",
		})
	}

	if req.TouchesScoredFields() {
		observeScore(idea)
	}

	return c.JSON(idea)
}

// Delete removes an idea owned by the caller.
// DELETE /api/ideas/:id
func (h *IdeaHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	deleted, err := h.store.DeleteIdea(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		log.Printf("❌ Error deleting idea: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete idea",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Idea not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func observeScore(idea *models.Idea) {
	ideasScored.Inc()
	if idea.ViabilityScore != nil {
		viabilityScores.Observe(float64(*idea.ViabilityScore))
	}
}
