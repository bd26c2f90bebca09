package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// SlackService posts critical-error alerts to a Slack webhook. With no
// webhook configured it silently does nothing.
type SlackService struct {
	webhookURL string
	client     *http.Client
}

// SlackMessage represents a Slack webhook message
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a Slack message attachment
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field represents a field inside a Slack attachment
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackService creates a new SlackService
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		log.Println("⚠️  Slack webhook URL not configured - Slack alerts disabled")
	}

	return &SlackService{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendCriticalError posts a server-error alert. Best effort; a failed
// webhook call is logged and never propagated to the request path.
func (s *SlackService) SendCriticalError(method, path string, statusCode int, message string) {
	if s.webhookURL == "" {
		return
	}

	slackMsg := SlackMessage{
		Attachments: []Attachment{
			{
				Color:     "danger",
				Title:     "🚨 Server error",
				Text:      message,
				Timestamp: time.Now().Unix(),
				Footer:    "Vrticko - Backend",
				Fields: []Field{
					{Title: "Method", Value: method, Short: true},
					{Title: "Status", Value: strconv.Itoa(statusCode), Short: true},
					{Title: "Path", Value: path, Short: false},
				},
			},
		},
	}

	if err := s.post(slackMsg); err != nil {
		log.Printf("❌ Slack alert failed: %v", err)
	}
}

// post sends a message to the webhook
func (s *SlackService) post(msg SlackMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to post to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
