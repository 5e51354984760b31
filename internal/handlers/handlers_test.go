package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"drishti/internal/database"
	"drishti/internal/middleware"
	"drishti/internal/session"
	"drishti/internal/storage"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := storage.NewSQLiteStore(db)
	sessions := session.NewMemoryStore(time.Hour)

	app := fiber.New()
	app.Use(middleware.LoadUser(sessions, store))

	authHandler := NewAuthHandler(store, sessions, time.Hour)
	ideaHandler := NewIdeaHandler(store)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Get("/user", authHandler.GetCurrentUser)

	ideas := api.Group("/ideas", middleware.RequireAuth())
	ideas.Post("/", ideaHandler.Create)
	ideas.Get("/", ideaHandler.List)
	ideas.Get("/:id", ideaHandler.Get)
	ideas.Put("/:id", ideaHandler.Update)
	ideas.Delete("/:id", ideaHandler.Delete)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	t.Fatal("Response did not set a session cookie")
	return ""
}

// register creates a user through the API and returns its session cookie.
func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/register", map[string]string{
		"username": username,
		"password": "secret123",
	}, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Register returned %d", resp.StatusCode)
	}
	return sessionCookie(t, resp)
}

func validIdeaBody() map[string]any {
	return map[string]any{
		"title":         "Solar-powered delivery drones",
		"problem":       strings.Repeat("p", 40),
		"solution":      strings.Repeat("s", 40),
		"targetMarket":  strings.Repeat("m", 20),
		"businessModel": strings.Repeat("b", 40),
		"competition":   strings.Repeat("c", 40),
		"team":          strings.Repeat("t", 40),
	}
}

func TestRegisterReturnsUserWithoutPassword(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/register", map[string]string{
		"username":  "ada",
		"password":  "secret123",
		"email":     "ada@example.com",
		"firstName": "Ada",
	}, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["username"] != "ada" {
		t.Errorf("Expected username ada, got %v", body["username"])
	}
	if _, ok := body["password"]; ok {
		t.Error("Password must never appear in API responses")
	}
	sessionCookie(t, resp)
}

func TestRegisterValidation(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name    string
		payload map[string]string
		message string
	}{
		{"short username", map[string]string{"username": "ab", "password": "secret123"},
			"Username must be at least 3 characters"},
		{"short password", map[string]string{"username": "ada", "password": "abc"},
			"Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, "POST", "/api/register", tt.payload, "")
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", resp.StatusCode)
			}
			if body := decodeBody(t, resp); body["message"] != tt.message {
				t.Errorf("Expected message %q, got %v", tt.message, body["message"])
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := setupTestApp(t)
	register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/register", map[string]string{
		"username": "ada",
		"password": "different456",
	}, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate username, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Username already exists" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestLoginFlow(t *testing.T) {
	app := setupTestApp(t)
	register(t, app, "ada")

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, "POST", "/api/login", map[string]string{
			"username": "ada", "password": "wrong",
		}, "")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", resp.StatusCode)
		}
		if body := decodeBody(t, resp); body["message"] != "Invalid username or password" {
			t.Errorf("Unexpected message: %v", body["message"])
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := doJSON(t, app, "POST", "/api/login", map[string]string{
			"username": "nobody", "password": "secret123",
		}, "")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("success", func(t *testing.T) {
		resp := doJSON(t, app, "POST", "/api/login", map[string]string{
			"username": "ada", "password": "secret123",
		}, "")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		cookie := sessionCookie(t, resp)

		userResp := doJSON(t, app, "GET", "/api/user", nil, cookie)
		if userResp.StatusCode != fiber.StatusOK {
			t.Fatalf("Expected 200 from /api/user, got %d", userResp.StatusCode)
		}
		if body := decodeBody(t, userResp); body["username"] != "ada" {
			t.Errorf("Expected current user ada, got %v", body["username"])
		}
	})
}

func TestCurrentUserUnauthenticated(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, "GET", "/api/user", nil, "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/logout", nil, cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// The old token no longer resolves.
	resp = doJSON(t, app, "GET", "/api/user", nil, cookie)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestIdeasRequireAuth(t *testing.T) {
	app := setupTestApp(t)

	for _, route := range []struct{ method, path string }{
		{"POST", "/api/ideas/"},
		{"GET", "/api/ideas/"},
		{"GET", "/api/ideas/some-id"},
		{"PUT", "/api/ideas/some-id"},
		{"DELETE", "/api/ideas/some-id"},
	} {
		resp := doJSON(t, app, route.method, route.path, map[string]string{}, "")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestCreateIdea(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), cookie)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != "completed" {
		t.Errorf("Expected status completed, got %v", body["status"])
	}
	if body["viabilityScore"] != float64(48) {
		t.Errorf("Expected viability score 48, got %v", body["viabilityScore"])
	}
	feedback, _ := body["feedback"].(string)
	if !strings.HasPrefix(feedback, "Score: 48/100 - ") {
		t.Errorf("Feedback missing header: %q", feedback)
	}
}

func TestCreateIdeaValidation(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	body := validIdeaBody()
	body["problem"] = "too short"

	resp := doJSON(t, app, "POST", "/api/ideas/", body, cookie)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	if got := decodeBody(t, resp); got["message"] != "Problem description must be at least 10 characters" {
		t.Errorf("Unexpected message: %v", got["message"])
	}
}

func TestListIdeasScopedToOwner(t *testing.T) {
	app := setupTestApp(t)
	adaCookie := register(t, app, "ada")
	bobCookie := register(t, app, "bob")

	doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), adaCookie)

	resp := doJSON(t, app, "GET", "/api/ideas/", nil, bobCookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var ideas []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&ideas); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(ideas) != 0 {
		t.Errorf("Expected bob to see no ideas, got %d", len(ideas))
	}
}

func TestIdeaOwnershipBehavesAsNotFound(t *testing.T) {
	app := setupTestApp(t)
	adaCookie := register(t, app, "ada")
	bobCookie := register(t, app, "bob")

	resp := doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), adaCookie)
	ideaID := decodeBody(t, resp)["id"].(string)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/ideas/" + ideaID},
		{"PUT", "/api/ideas/" + ideaID},
		{"DELETE", "/api/ideas/" + ideaID},
	} {
		var body any
		if route.method == "PUT" {
			body = map[string]string{"title": "hijacked"}
		}
		got := doJSON(t, app, route.method, route.path, body, bobCookie)
		if got.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s by non-owner: expected 404, got %d", route.method, got.StatusCode)
		}
	}
}

func TestUpdateIdeaRescores(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), cookie)
	ideaID := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, app, "PUT", "/api/ideas/"+ideaID, map[string]string{
		"problem": strings.Repeat("p", 200),
	}, cookie)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["viabilityScore"] != float64(59) {
		t.Errorf("Expected rescored value 59, got %v", body["viabilityScore"])
	}
}

func TestUpdateIdeaValidation(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), cookie)
	ideaID := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, app, "PUT", "/api/ideas/"+ideaID, map[string]string{
		"solution": "short",
	}, cookie)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Solution description must be at least 10 characters" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestDeleteIdea(t *testing.T) {
	app := setupTestApp(t)
	cookie := register(t, app, "ada")

	resp := doJSON(t, app, "POST", "/api/ideas/", validIdeaBody(), cookie)
	ideaID := decodeBody(t, resp)["id"].(string)

	resp = doJSON(t, app, "DELETE", "/api/ideas/"+ideaID, nil, cookie)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "DELETE", "/api/ideas/"+ideaID, nil, cookie)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
}
