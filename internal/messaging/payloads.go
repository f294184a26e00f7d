package messaging

import "article-server/internal/models"

// ArticleGenerationTaskPayload is the message consumed from the task queue.
type ArticleGenerationTaskPayload struct {
	TaskID             string              `json:"task_id"`
	UserID             string              `json:"user_id"`
	Brief              models.ContentBrief `json:"brief"`
	Business           models.BusinessInfo `json:"business,omitempty"`
	PassNumber         int                 `json:"pass_number,omitempty"`
	Preset             string              `json:"preset,omitempty"`
	ValidationMode     string              `json:"validation_mode,omitempty"`
	MaxSectionsOverride int                `json:"max_sections,omitempty"`
	Provider           string              `json:"provider,omitempty"`
	Model              string              `json:"model,omitempty"`
}

// NotificationStatus reports how a generation task ended.
type NotificationStatus string

const (
	NotificationStatusSuccess NotificationStatus = "success"
	NotificationStatusError   NotificationStatus = "error"
	NotificationStatusAborted NotificationStatus = "aborted"
)

// NotificationPayload is published to the updates queue when a task finishes.
type NotificationPayload struct {
	TaskID            string             `json:"task_id"`
	UserID            string             `json:"user_id"`
	JobID             string             `json:"job_id,omitempty"`
	Status            NotificationStatus `json:"status"`
	CompletedSections int                `json:"completed_sections,omitempty"`
	TotalSections     int                `json:"total_sections,omitempty"`
	DraftText         string             `json:"draft_text,omitempty"`
	ErrorDetails      string             `json:"error_details,omitempty"`
}

// ProgressPayload is published after every completed section so clients can
// render incremental progress.
type ProgressPayload struct {
	TaskID            string `json:"task_id"`
	UserID            string `json:"user_id"`
	JobID             string `json:"job_id"`
	SectionKey        string `json:"section_key"`
	SectionHeading    string `json:"section_heading"`
	CompletedSections int    `json:"completed_sections"`
	TotalSections     int    `json:"total_sections"`
}
