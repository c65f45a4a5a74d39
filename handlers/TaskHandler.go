// Package handlers provides the HTTP request handlers for TodoWebService.
//
// This package contains the implementation of the HTTP request handlers for managing tasks in the TodoWebService application.
// It includes handlers for listing tasks, creating a task, fetching a task by id, marking a task as completed, and deleting a task.
// The handlers load the whole task collection from the JSON file store on every request, mutate it in memory,
// and write the whole collection back on every mutating operation.
// Input validation for task creation is done with the validator package and custom validators from the validation package.
//
// For more information on how to use the handlers and the available endpoints, please refer to the individual handler function documentation.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TodoWebService/commands"
	"TodoWebService/models"
	"TodoWebService/response"
	"TodoWebService/storage"
	"TodoWebService/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	log      = logrus.New()
	validate = validator.New()
)

func Initialize() {
	validate.RegisterValidation("fieldValidator", validator.Func(func(fl validator.FieldLevel) bool {
		return validation.FieldValidator(fl) // Register custom validator
	}))
	validate.RegisterValidation("statusValidator", validator.Func(func(fl validator.FieldLevel) bool {
		return validation.StatusValidator(fl)
	}))

	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	storage.Initialize()
}

// requestFields builds the base log fields for a request, with a fresh
// request id so overlapping requests can be told apart in the log stream.
func requestFields(operation string, req *http.Request) logrus.Fields {
	return logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"request id":     uuid.NewString(),
	}
}

// notFound writes the fixed 404 body used by every by-id operation.
func notFound(res http.ResponseWriter) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusNotFound)
	json.NewEncoder(res).Encode(response.Detail{Detail: "Tarea no encontrada"})
}

// parseTaskID extracts and parses the {task_id} path segment.
func parseTaskID(req *http.Request) (int, error) {
	return strconv.Atoi(req.PathValue("task_id"))
}

// RootHandler handles the health-check request on the root route.
// It keeps track of the number of requests using a Prometheus counter.
// It always returns HTTP 200 with a fixed status message.
//
// Example response:
// {
//	 "ok": true,
//	 "message": "API funcionando!"
// }
func RootHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/").Inc()
	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(response.Health{Ok: true, Message: "API funcionando!"})
}

// GetTasksHandler handles the HTTP request for retrieving all tasks.
// It keeps track of the number of requests or errors using Prometheus counters.
// The whole collection is re-read from the file store on every call, so the
// response always reflects the persisted state. An empty collection is a
// success and returns an empty JSON array.
//
// Example response:
// [
//	 {
//	   "id": 1,
//	   "title": "Comprar pan",
//	   "description": "antes de las 14:00",
//	   "status": "pendiente",
//	   "priority": 2,
//	   "created_at": "2024-05-02T09:30:00Z"
//	 },
//	 ... ]
func GetTasksHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/tasks").Inc()
	fields := requestFields("get all tasks", req)

	tasks, err := storage.ReadTasks()
	if err != nil {
		errorCounter.WithLabelValues("/tasks").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}
	log.WithFields(fields).Info("Processing request")

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(tasks)
}

// CreateTaskHandler handles the HTTP request for creating a new task.
// It keeps track of the number of requests or errors using Prometheus counters.
// It reads the request body to get the task details and validates the input fields of the task from the request body.
// The new task id is computed as max(existing ids)+1, or 1 when the collection is empty;
// gaps left by deletion are never filled. The task always starts with status "pendiente"
// and its creation timestamp is taken in UTC. The whole collection is then written back to the file store.
//
// Note that the input validation does not allow a missing or blank title.
// The priority field is stored exactly as sent, without interpretation.
//
// Example request body:
// {
//	 "title": "Comprar pan",
//	 "description": "antes de las 14:00",
//	 "priority": 2
// }
//
// Example response:
// {
//	 "id": 1,
//	 "title": "Comprar pan",
//	 "description": "antes de las 14:00",
//	 "status": "pendiente",
//	 "priority": 2,
//	 "created_at": "2024-05-02T09:30:00Z"
// }
func CreateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/tasks").Inc()
	fields := requestFields("create a task", req)

	command := commands.CreateTaskCommand{}
	err := json.NewDecoder(req.Body).Decode(&command)
	if err != nil {
		errorCounter.WithLabelValues("/tasks").Inc()
		http.Error(res, "Invalid request body", http.StatusBadRequest)
		log.WithFields(fields).Error("Invalid request body")
		return
	}
	err = validate.Struct(command)
	if err != nil {
		errorCounter.WithLabelValues("/tasks").Inc()
		http.Error(res, "Invalid request body inputs", http.StatusBadRequest)
		log.WithFields(fields).Error("Invalid request body inputs")
		return
	}

	tasks, err := storage.ReadTasks()
	if err != nil {
		errorCounter.WithLabelValues("/tasks").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	// Fresh max over the collection just read. Two overlapping creates can
	// both see the same maximum and assign the same id; there is no lock
	// here and that race is a known limitation of the file store.
	nextID := 1
	for _, task := range tasks {
		if task.Id >= nextID {
			nextID = task.Id + 1
		}
	}

	task := models.Task{
		Id:          nextID,
		Title:       command.Title,
		Description: command.Description,
		Status:      models.StatusPending,
		Priority:    command.Priority,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	tasks = append(tasks, task)

	err = storage.WriteTasks(tasks)
	if err != nil {
		errorCounter.WithLabelValues("/tasks").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	taskJSON, _ := json.Marshal(task)
	fields["request body"] = string(taskJSON)
	log.WithFields(fields).Info("Processing request")

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(task)
}

// GetTaskHandler handles the HTTP request for retrieving a task by its id.
// It keeps track of the number of requests or errors using Prometheus counters.
// It loads the whole collection and scans it for the first task matching {task_id}.
// If no task matches, it returns HTTP 404 with a fixed error message.
//
// Example request:
// GET /tasks/1
//
// Example 404 response:
// {
//	 "detail": "Tarea no encontrada"
// }
func GetTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/tasks/{task_id}").Inc()
	fields := requestFields("get task by id", req)

	taskID, err := parseTaskID(req)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, "Invalid task ID", http.StatusBadRequest)
		log.WithFields(fields).Error("Invalid task ID")
		return
	}

	tasks, err := storage.ReadTasks()
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	task, err := findTask(tasks, taskID)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		notFound(res)
		log.WithFields(fields).Error(err.Error())
		return
	}
	log.WithFields(fields).Info("Processing request")

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(task)
}

// CompleteTaskHandler handles the HTTP request for marking a task as completed.
// It keeps track of the number of requests or errors using Prometheus counters.
// It loads the whole collection, scans it for the task matching {task_id}, sets its
// status to "completada", and writes the whole collection back to the file store.
// Every other field of the task is left untouched. Completing an already
// completed task is allowed and still rewrites the collection.
// If no task matches, it returns HTTP 404 and nothing is written.
//
// Example response:
// {
//	 "id": 1,
//	 "title": "Comprar pan",
//	 "description": "antes de las 14:00",
//	 "status": "completada",
//	 "priority": 2,
//	 "created_at": "2024-05-02T09:30:00Z"
// }
func CompleteTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/tasks/{task_id}").Inc()
	fields := requestFields("complete a task", req)

	taskID, err := parseTaskID(req)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, "Invalid task ID", http.StatusBadRequest)
		log.WithFields(fields).Error("Invalid task ID")
		return
	}

	tasks, err := storage.ReadTasks()
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	index := -1
	for i := range tasks {
		if tasks[i].Id == taskID {
			index = i
			break
		}
	}
	if index == -1 {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		notFound(res)
		log.WithFields(fields).Error("task not found for ID " + strconv.Itoa(taskID))
		return
	}

	tasks[index].Status = models.StatusCompleted
	err = storage.WriteTasks(tasks)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	taskJSON, _ := json.Marshal(tasks[index])
	fields["request body"] = string(taskJSON)
	log.WithFields(fields).Info("Processing request")

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(tasks[index])
}

// DeleteTaskHandler handles the HTTP request for deleting a task.
// It keeps track of the number of requests or errors using Prometheus counters.
// It loads the whole collection and rebuilds it without the task matching {task_id}.
// If the rebuilt collection has the same length as the original, no task matched
// and it returns HTTP 404 without writing. Otherwise the filtered collection is
// written back and a confirmation message is returned. Remaining task ids are untouched.
//
// Example response:
// {
//	 "message": "Tarea eliminada correctamente"
// }
func DeleteTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/tasks/{task_id}").Inc()
	fields := requestFields("delete a task", req)

	taskID, err := parseTaskID(req)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, "Invalid task ID", http.StatusBadRequest)
		log.WithFields(fields).Error("Invalid task ID")
		return
	}

	tasks, err := storage.ReadTasks()
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}

	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Id != taskID {
			filtered = append(filtered, task)
		}
	}
	if len(filtered) == len(tasks) {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		notFound(res)
		log.WithFields(fields).Error("task not found for ID " + strconv.Itoa(taskID))
		return
	}

	err = storage.WriteTasks(filtered)
	if err != nil {
		errorCounter.WithLabelValues("/tasks/{task_id}").Inc()
		http.Error(res, err.Error(), http.StatusInternalServerError)
		log.WithFields(fields).Error(err.Error())
		return
	}
	log.WithFields(fields).Info("Processing request")

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(response.Response{Message: "Tarea eliminada correctamente"})
}

// findTask scans the collection for the first task with the given id.
//
// Returns:
// - *models.Task: A pointer to the matching task inside the given slice.
// - error: storage.ErrTaskNotFound wrapped with the id if no task matches.
func findTask(tasks []models.Task, taskID int) (*models.Task, error) {
	for i := range tasks {
		if tasks[i].Id == taskID {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w for ID %d", storage.ErrTaskNotFound, taskID)
}
