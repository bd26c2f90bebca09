package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/thecoder877/Vrticko/constants"
	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/utils"
)

// SubscriptionStore is the slice of the subscription registry the handler
// needs. Implemented by database.SubscriptionRepository.
type SubscriptionStore interface {
	Upsert(sub *models.PushSubscription) error
	FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// SubscriptionHandler manages browser push registrations
type SubscriptionHandler struct {
	subscriptions  SubscriptionStore
	profiles       middleware.UserProvider
	vapidPublicKey string
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptions SubscriptionStore, profiles middleware.UserProvider, vapidPublicKey string) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions:  subscriptions,
		profiles:       profiles,
		vapidPublicKey: vapidPublicKey,
	}
}

// VAPIDPublicKey handles GET /api/push/vapid-public-key
func (h *SubscriptionHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"publicKey": h.vapidPublicKey})
}

// Subscribe handles POST /api/push/subscribe. Re-subscribing an existing
// endpoint updates its keys and owner in place, so a browser re-used by
// another account silently changes hands.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	user, err := h.profiles.GetUser(claims.UserID)
	if err != nil {
		log.Printf("❌ Profile lookup failed for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}
	if user.Role == models.RoleAdmin {
		utils.RespondError(w, http.StatusForbidden, constants.ErrAdminNoPush)
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			utils.RespondError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	sub := &models.PushSubscription{
		UserID:    claims.UserID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
	}
	if err := h.subscriptions.Upsert(sub); err != nil {
		log.Printf("❌ Subscription upsert failed for %s: %v", claims.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Push subscription registered for user %s", claims.UserID)
	utils.RespondSuccess(w, "Subscription registered", nil)
}

// Unsubscribe handles POST /api/push/unsubscribe. With an endpoint in
// the body it removes that registration; without one it removes every
// subscription of the acting user.
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.UnsubscribeRequest
	if r.Body != nil {
		// An empty body means "drop all of mine"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Endpoint != "" {
		sub, err := h.subscriptions.FindByEndpoint(r.Context(), req.Endpoint)
		if err != nil {
			log.Printf("❌ Subscription lookup failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
		if sub == nil {
			// Already gone; opt-out is idempotent
			utils.RespondSuccess(w, "Subscription removed", nil)
			return
		}
		if sub.UserID != claims.UserID {
			utils.RespondError(w, http.StatusForbidden, constants.ErrAccessDenied)
			return
		}
		if err := h.subscriptions.Delete(r.Context(), req.Endpoint); err != nil {
			log.Printf("❌ Subscription delete failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
	} else {
		if err := h.subscriptions.DeleteByUserID(r.Context(), claims.UserID); err != nil {
			log.Printf("❌ Subscription delete failed for %s: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
	}

	log.Printf("🗑️ Push subscription(s) removed for user %s", claims.UserID)
	utils.RespondSuccess(w, "Subscription removed", nil)
}
