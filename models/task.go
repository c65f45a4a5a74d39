// Package models contains the data models for the application to be used in request handling.
package models

import "encoding/json"

// Task statuses. A task starts as "pendiente" and can only move to
// "completada"; there is no transition back.
const (
	StatusPending   = "pendiente"
	StatusCompleted = "completada"
)

// Task represents a task in the system.
// Task has the following properties:
// - Id: The unique identifier of the task, assigned by the server.
// - Title: The title of the task.
// - Description: The description of the task.
// - Status: The status of the task, "pendiente" or "completada".
// - Priority: The priority of the task, stored as-is without interpretation.
// - CreatedAt: The UTC creation timestamp in ISO-8601 format.
type Task struct {
	Id          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    json.RawMessage `json:"priority"`
	CreatedAt   string          `json:"created_at"`
}
