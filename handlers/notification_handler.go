package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/thecoder877/Vrticko/constants"
	"github.com/thecoder877/Vrticko/database"
	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/services"
	"github.com/thecoder877/Vrticko/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler serves the notification pipeline and per-user
// read-state endpoints
type NotificationHandler struct {
	service       *services.NotificationService
	notifications *database.NotificationRepository
	recipients    *database.RecipientRepository
	feed          services.FeedBroadcaster
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *services.NotificationService, notifications *database.NotificationRepository, recipients *database.RecipientRepository, feed services.FeedBroadcaster) *NotificationHandler {
	return &NotificationHandler{
		service:       service,
		notifications: notifications,
		recipients:    recipients,
		feed:          feed,
	}
}

// Create handles POST /api/notifications
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return
	}

	resp, err := h.service.Create(r.Context(), req, claims.UserID)
	if err != nil {
		var validationErr *utils.ValidationError
		switch {
		case errors.As(err, &validationErr):
			utils.RespondError(w, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, services.ErrUserNotFound):
			utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		default:
			log.Printf("❌ Notification creation failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		}
		return
	}

	status := http.StatusCreated
	if resp.Deduplicated {
		status = http.StatusOK
	}
	utils.RespondJSON(w, status, resp)
}

// List handles GET /api/notifications and returns the caller's
// notifications newest first, soft-deleted rows excluded
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	rows, err := h.recipients.FindByUser(r.Context(), claims.UserID, 50)
	if err != nil {
		log.Printf("❌ Failed to list notifications for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.NotificationID)
	}

	byID, err := h.notifications.FindByIDs(r.Context(), ids)
	if err != nil {
		log.Printf("❌ Failed to load notifications for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	result := make([]models.UserNotification, 0, len(rows))
	for _, row := range rows {
		notification, ok := byID[row.NotificationID.Hex()]
		if !ok {
			continue
		}
		result = append(result, models.UserNotification{
			Notification: notification,
			ReadAt:       row.ReadAt,
		})
	}

	utils.RespondSuccess(w, "", result)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	count, err := h.recipients.CountUnread(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("❌ Failed to count unread for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkRead handles PATCH /api/notifications/{id}/read. Idempotent: a
// second call on an already-read row changes nothing and still succeeds.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	notificationID := mux.Vars(r)["id"]
	if _, err := primitive.ObjectIDFromHex(notificationID); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidNotifID)
		return
	}

	modified, err := h.recipients.MarkRead(r.Context(), notificationID, claims.UserID)
	if err != nil {
		log.Printf("❌ Failed to mark %s read for %s: %v", notificationID, claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if modified && h.feed != nil {
		h.feed.BroadcastRecipientEvent(models.NewRecipientEvent(models.FeedOpUpdate, claims.UserID, notificationID))
	}

	utils.RespondSuccess(w, "Notification marked as read", map[string]bool{"modified": modified})
}

// MarkAllRead handles PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	modified, err := h.recipients.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("❌ Failed to mark all read for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if modified > 0 && h.feed != nil {
		h.feed.BroadcastRecipientEvent(models.NewRecipientEvent(models.FeedOpUpdate, claims.UserID, ""))
	}

	utils.RespondSuccess(w, "All notifications marked as read", map[string]int64{"modified": modified})
}

// Delete handles DELETE /api/notifications/{id}. The row is soft-deleted
// for the caller only; other recipients keep theirs.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	notificationID := mux.Vars(r)["id"]
	if _, err := primitive.ObjectIDFromHex(notificationID); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidNotifID)
		return
	}

	deleted, err := h.recipients.SoftDelete(r.Context(), notificationID, claims.UserID)
	if err != nil {
		log.Printf("❌ Failed to delete %s for %s: %v", notificationID, claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if !deleted {
		utils.RespondError(w, http.StatusNotFound, constants.ErrNotifNotFound)
		return
	}

	if h.feed != nil {
		h.feed.BroadcastRecipientEvent(models.NewRecipientEvent(models.FeedOpUpdate, claims.UserID, notificationID))
	}

	utils.RespondSuccess(w, "Notification removed", nil)
}
