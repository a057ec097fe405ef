package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
)

// Issue events can be mirrored to an external webhook (chat bridge, CI
// hook) configured through ISSUE_EVENTS_WEBHOOK. Delivery is
// fire-and-forget: a failed POST is logged, never surfaced to the
// client.

type IssueEventPayload struct {
	Event     string    `json:"event"`
	IssueID   uint      `json:"issue_id"`
	ProjectID uint      `json:"project_id"`
	Title     string    `json:"title"`
	Tag       string    `json:"tag"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

var webhookClient = &http.Client{Timeout: 10 * time.Second}

func NotifyIssueEvent(issue models.Issue, event string) {
	webhookURL := os.Getenv("ISSUE_EVENTS_WEBHOOK")
	if webhookURL == "" {
		return
	}

	payload := IssueEventPayload{
		Event:     fmt.Sprintf("issue.%s", event),
		IssueID:   issue.ID,
		ProjectID: issue.ProjectID,
		Title:     issue.Title,
		Tag:       issue.Tag,
		Priority:  issue.Priority,
		Status:    issue.Status,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal webhook payload: %v", err)
			return
		}

		resp, err := webhookClient.Post(webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("Failed to deliver issue webhook: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Printf("Issue webhook returned status %d", resp.StatusCode)
		}
	}()
}
