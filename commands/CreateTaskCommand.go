// Package commands contains the commands for the application to be used for request inputs.
package commands

import "encoding/json"

// CreateTaskCommand represents a request to create a task.
// Title must be non-empty. Description is optional. Priority is kept opaque
// and stored exactly as the client sent it.
type CreateTaskCommand struct {
	Title       string          `json:"title" validate:"required,fieldValidator"`
	Description string          `json:"description"`
	Priority    json.RawMessage `json:"priority"`
}
