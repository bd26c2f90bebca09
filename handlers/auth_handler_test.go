package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/services"
)

func TestLogoutInvalidatesCachedProfile(t *testing.T) {
	loads := 0
	cache := services.NewProfileCache(func(id string) (*models.User, error) {
		loads++
		return &models.User{Username: id, Role: models.RoleParent}, nil
	}, time.Minute)

	handler := NewAuthHandler(nil, cache, testSecret)
	wrapped := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Logout))

	if _, err := cache.GetUser("p1"); err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected 1 load, got %d", loads)
	}

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/auth/logout", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The next lookup must hit the loader again
	if _, err := cache.GetUser("p1"); err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if loads != 2 {
		t.Errorf("expected reload after logout, loader ran %d times", loads)
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	cache := services.NewProfileCache(func(id string) (*models.User, error) {
		return nil, nil
	}, time.Minute)
	handler := NewAuthHandler(nil, cache, testSecret)
	wrapped := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Logout))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
