// TodoWebService is a small web service that manages a personal list of tasks.
//
// It implements CRUD-style operations over a single task collection stored in one JSON file.
// The file is read in full on every request and rewritten in full on every mutation.
// Rate limiting with a rate of 2 events per second and a burst of 20 events is applied to protect against abuse.
// It also provides Prometheus metrics for monitoring and recording metrics.
//
// The following endpoints are available:
//
//  1. GET    /               - Health check
//  2. GET    /tasks          - Get all tasks
//  3. POST   /tasks          - Create a new task
//  4. GET    /tasks/{task_id} - Get a task by id
//  5. PUT    /tasks/{task_id} - Mark a task as completed
//  6. DELETE /tasks/{task_id} - Delete a task
//  7. GET    /metrics        - Display Prometheus metrics
//
// You may use godoc -http=:6060 to view the documentation in your browser.
package main

import (
	"TodoWebService/handlers"
	"TodoWebService/response"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

var (
	limiter      = rate.NewLimiter(2, 20)
	errorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapi_errors_total",
		Help: "Total number of errors occurred in the application.",
	}, []string{"endpoint"})
	endPointCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapi_endpoint_calls_total",
		Help: "Total number of calls per endpoint.",
	}, []string{"endpoint"})
	log = logrus.New()
)

// A struct type that represents a handler function with metrics.
type HandlerFuncWithMetrics func(http.ResponseWriter, *http.Request, *prometheus.CounterVec, *prometheus.CounterVec)

func main() {

	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file")
	}
	prometheus.MustRegister(errorCounter)
	prometheus.MustRegister(endPointCounter)
	handlers.Initialize()
	http.HandleFunc("GET /{$}", MetricsHandler(handlers.RootHandler, endPointCounter, errorCounter))
	http.HandleFunc("GET /tasks", MetricsHandler(handlers.GetTasksHandler, endPointCounter, errorCounter))
	http.HandleFunc("POST /tasks", MetricsHandler(handlers.CreateTaskHandler, endPointCounter, errorCounter))
	http.HandleFunc("GET /tasks/{task_id}", MetricsHandler(handlers.GetTaskHandler, endPointCounter, errorCounter))
	http.HandleFunc("PUT /tasks/{task_id}", MetricsHandler(handlers.CompleteTaskHandler, endPointCounter, errorCounter))
	http.HandleFunc("DELETE /tasks/{task_id}", MetricsHandler(handlers.DeleteTaskHandler, endPointCounter, errorCounter))

	// Start the server
	http.Handle("/metrics", promhttp.Handler())
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Info("Server listening on port " + port)
	http.ListenAndServe(":"+port, nil)
}

// rateLimiter is a middleware function that implements rate limiting for HTTP requests.
// It takes a `next` function as a parameter, which is the handler function to be called if the request is allowed.
// If the request is not allowed due to rate limiting, it returns a JSON response with an error message and HTTP status code 429 (Too Many Requests).
// The `endPointCounter` and `errorCounter` parameters are Prometheus CounterVecs used for monitoring and recording metrics.
func rateLimiter(next func(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec)) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if !limiter.Allow() {
			message := response.Message{
				Status: "Request Failed",
				Body:   "The API is at capacity, try again later.",
			}
			res.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(res).Encode(&message)
			return
		} else {
			next(res, req, endPointCounter, errorCounter)
		}
	})
}

// MetricsHandler is a middleware function that wraps the provided handler function
// with metrics collection and rate limiting capabilities.
// It takes in a handler function, Prometheus counter vectors for endpoint and error metrics,
// and returns an http.HandlerFunc.
func MetricsHandler(handlerFunc HandlerFuncWithMetrics, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		rateLimiterFunc := rateLimiter(func(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
			handlerFunc(res, req, endPointCounter, errorCounter)
		})
		rateLimiterFunc.ServeHTTP(res, req)
	}
}
