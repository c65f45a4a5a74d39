// Package storage is the persistence boundary of the application.
//
// The whole task collection lives in a single JSON file. Every read loads the
// full file and every write replaces it; there is no partial update, no
// locking and no transaction discipline. Concurrent read-modify-write cycles
// can race (duplicate ids, lost updates) — that limitation is inherited from
// the design and intentionally left in place rather than papered over with
// locking the callers do not expect.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"TodoWebService/models"
)

var (
	// ErrTaskNotFound is returned by callers scanning the collection when
	// no task matches the requested id.
	ErrTaskNotFound = errors.New("task not found")

	tasksFile = "tasks.json"
)

// StorageError reports that the persisted collection could not be read or
// written. The underlying cause is kept for errors.As / errors.Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, tasksFile, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Initialize sets the tasks file path from the TASKS_FILE environment
// variable, keeping the default when it is unset.
func Initialize() {
	if path := os.Getenv("TASKS_FILE"); path != "" {
		tasksFile = path
	}
}

// ReadTasks loads the entire task collection in insertion order.
// A missing file is not an error: it means no task was ever created, so an
// empty collection is returned. A file that exists but cannot be read or
// parsed surfaces as a StorageError.
func ReadTasks() ([]models.Task, error) {
	data, err := os.ReadFile(tasksFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Task{}, nil
		}
		return nil, &StorageError{Op: "read", Err: err}
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// WriteTasks replaces the persisted collection with the given tasks.
// The new content is written to a temporary file in the same directory and
// renamed over the old one, so a reader never observes a half-written file.
func WriteTasks(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	dir := filepath.Dir(tasksFile)
	tmp, err := os.CreateTemp(dir, "tasks-*.json")
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StorageError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmp.Name(), tasksFile); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}
