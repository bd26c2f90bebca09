package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/utils"
)

type roleProvider struct {
	role string
}

func (p roleProvider) GetUser(userID string) (*models.User, error) {
	if p.role == "" {
		return nil, nil
	}
	return &models.User{Role: p.role}, nil
}

type fakeSubStore struct {
	byEndpoint map[string]*models.PushSubscription

	upserts      []models.PushSubscription
	deleted      []string
	deletedUsers []string
}

func (f *fakeSubStore) Upsert(sub *models.PushSubscription) error {
	f.upserts = append(f.upserts, *sub)
	return nil
}

func (f *fakeSubStore) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	return f.byEndpoint[endpoint], nil
}

func (f *fakeSubStore) Delete(ctx context.Context, endpoint string) error {
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeSubStore) DeleteByUserID(ctx context.Context, userID string) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

func bearerRequest(t *testing.T, userID, role, method, path, body string) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken(userID, userID+"@vrticko.app", role, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSubscribe(t *testing.T) {
	t.Run("upserts with the acting user as owner", func(t *testing.T) {
		store := &fakeSubStore{}
		handler := NewSubscriptionHandler(store, roleProvider{role: models.RoleParent}, "test-public-key")
		wrapped := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Subscribe))

		body := `{"endpoint":"https://push.example/ep","keys":{"p256dh":"k","auth":"a"}}`
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/subscribe", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(store.upserts) != 1 {
			t.Fatalf("expected 1 upsert, got %d", len(store.upserts))
		}
		got := store.upserts[0]
		if got.UserID != "p1" || got.Endpoint != "https://push.example/ep" || got.P256dhKey != "k" || got.AuthKey != "a" {
			t.Errorf("unexpected upsert %+v", got)
		}
	})

	t.Run("rejects admins", func(t *testing.T) {
		store := &fakeSubStore{}
		handler := NewSubscriptionHandler(store, roleProvider{role: models.RoleAdmin}, "test-public-key")
		wrapped := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Subscribe))

		body := `{"endpoint":"https://push.example/ep","keys":{"p256dh":"k","auth":"a"}}`
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, bearerRequest(t, "a1", models.RoleAdmin, http.MethodPost, "/api/push/subscribe", body))

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 for admin subscribe, got %d", rec.Code)
		}
		if len(store.upserts) != 0 {
			t.Errorf("admin subscribe must not reach the store, got %v", store.upserts)
		}
	})

	t.Run("validates body", func(t *testing.T) {
		store := &fakeSubStore{}
		handler := NewSubscriptionHandler(store, roleProvider{role: models.RoleParent}, "test-public-key")
		wrapped := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Subscribe))

		cases := []struct {
			name string
			body string
		}{
			{"missing endpoint", `{"keys":{"p256dh":"k","auth":"a"}}`},
			{"missing keys", `{"endpoint":"https://push.example/ep"}`},
			{"endpoint not a url", `{"endpoint":"not-a-url","keys":{"p256dh":"k","auth":"a"}}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				wrapped.ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/subscribe", tc.body))
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected 400, got %d", rec.Code)
				}
			})
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	newHandler := func(store *fakeSubStore) http.Handler {
		handler := NewSubscriptionHandler(store, roleProvider{role: models.RoleParent}, "test-public-key")
		return middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Unsubscribe))
	}

	t.Run("own endpoint is deleted", func(t *testing.T) {
		store := &fakeSubStore{byEndpoint: map[string]*models.PushSubscription{
			"https://push.example/ep": {UserID: "p1", Endpoint: "https://push.example/ep"},
		}}
		rec := httptest.NewRecorder()
		newHandler(store).ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/unsubscribe", `{"endpoint":"https://push.example/ep"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(store.deleted) != 1 || store.deleted[0] != "https://push.example/ep" {
			t.Errorf("expected endpoint deleted, got %v", store.deleted)
		}
	})

	t.Run("someone else's endpoint is refused", func(t *testing.T) {
		store := &fakeSubStore{byEndpoint: map[string]*models.PushSubscription{
			"https://push.example/ep": {UserID: "p2", Endpoint: "https://push.example/ep"},
		}}
		rec := httptest.NewRecorder()
		newHandler(store).ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/unsubscribe", `{"endpoint":"https://push.example/ep"}`))

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
		if len(store.deleted) != 0 {
			t.Errorf("foreign endpoint must not be deleted, got %v", store.deleted)
		}
	})

	t.Run("unknown endpoint succeeds idempotently", func(t *testing.T) {
		store := &fakeSubStore{}
		rec := httptest.NewRecorder()
		newHandler(store).ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/unsubscribe", `{"endpoint":"https://push.example/gone"}`))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if len(store.deleted) != 0 {
			t.Errorf("nothing to delete, got %v", store.deleted)
		}
	})

	t.Run("empty body drops every subscription of the user", func(t *testing.T) {
		store := &fakeSubStore{}
		rec := httptest.NewRecorder()
		newHandler(store).ServeHTTP(rec, bearerRequest(t, "p1", models.RoleParent, http.MethodPost, "/api/push/unsubscribe", `{}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(store.deletedUsers) != 1 || store.deletedUsers[0] != "p1" {
			t.Errorf("expected user-wide delete for p1, got %v", store.deletedUsers)
		}
	})
}

func TestVAPIDPublicKey(t *testing.T) {
	handler := NewSubscriptionHandler(&fakeSubStore{}, roleProvider{role: models.RoleParent}, "test-public-key")

	req := httptest.NewRequest(http.MethodGet, "/api/push/vapid-public-key", nil)
	rec := httptest.NewRecorder()
	handler.VAPIDPublicKey(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["publicKey"] != "test-public-key" {
		t.Errorf("unexpected key %q", body["publicKey"])
	}
}
