package constants

// Common HTTP error messages
const (
	ErrMethodNotAllowed  = "Method not allowed"
	ErrServerError       = "Server error"
	ErrInvalidData       = "Invalid request data"
	ErrInvalidJSONBody   = "Invalid JSON body"
	ErrNotAuthenticated  = "Not authenticated"
	ErrInvalidToken      = "Invalid or expired token"
	ErrAccessDenied      = "Access denied"
	ErrUserNotFound      = "User not found"
	ErrNotificationID    = "Notification ID required"
	ErrInvalidNotifID    = "Invalid notification ID"
	ErrNotifNotFound     = "Notification not found"
	ErrAdminNoPush       = "Administrators are not enrolled in push delivery"
	ErrEndpointRequired  = "Subscription endpoint required"
	ErrInvalidCredential = "Invalid email or password"
)

// HTTP headers
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
)
