package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/services"
	"github.com/thecoder877/Vrticko/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type memoryStore struct{}

func (m *memoryStore) CreateWithRecipients(ctx context.Context, notification *models.Notification, userIDs []string, window time.Duration) (*models.Notification, []models.RecipientRecord, bool, error) {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	rows := make([]models.RecipientRecord, len(userIDs))
	for i, id := range userIDs {
		rows[i] = models.RecipientRecord{NotificationID: notification.ID, UserID: id}
	}
	return notification, rows, true, nil
}

type staticDirectory struct{}

func (staticDirectory) FindIDsByRoles(ctx context.Context, roles []string) ([]string, error) {
	var ids []string
	for _, role := range roles {
		switch role {
		case models.RoleParent:
			ids = append(ids, "p1", "p2")
		case models.RoleTeacher:
			ids = append(ids, "t1")
		}
	}
	return ids, nil
}

func (staticDirectory) FindByID(id string) (*models.User, error) { return nil, nil }

func (staticDirectory) FindRolesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	roles := make(map[string]string, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, "t") {
			roles[id] = models.RoleTeacher
		} else {
			roles[id] = models.RoleParent
		}
	}
	return roles, nil
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(ctx context.Context, notification *models.Notification, recipientIDs []string) models.DeliveryStats {
	return models.DeliveryStats{Attempted: len(recipientIDs), Succeeded: len(recipientIDs)}
}

type noopFeed struct{}

func (noopFeed) BroadcastRecipientEvent(event models.FeedEvent) {}

func newCreateHandler(t *testing.T) http.Handler {
	t.Helper()
	service := services.NewNotificationService(
		&memoryStore{},
		services.NewAudienceResolver(staticDirectory{}),
		noopDispatcher{},
		noopFeed{},
		30*time.Second,
	)
	handler := NewNotificationHandler(service, nil, nil, noopFeed{})
	return middleware.AuthMiddleware(testSecret)(http.HandlerFunc(handler.Create))
}

func authedRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken("t1", "teacher@vrticko.app", models.RoleTeacher, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateNotificationEndpoint(t *testing.T) {
	handler := newCreateHandler(t)

	t.Run("requires auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects bad json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/notifications", "{not json"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects invalid target", func(t *testing.T) {
		body := `{"title":"t","message":"m","target":"everyone"}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/notifications", body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("creates and reports delivery", func(t *testing.T) {
		body := `{"title":"Field trip","message":"Slips due Friday","target":"parents"}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/notifications", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp models.CreateNotificationResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Deduplicated {
			t.Error("fresh create flagged as deduplicated")
		}
		if resp.Recipients != 2 {
			t.Errorf("expected 2 recipients, got %d", resp.Recipients)
		}
		if resp.Delivery.Succeeded != 2 {
			t.Errorf("unexpected delivery stats: %+v", resp.Delivery)
		}
	})
}
