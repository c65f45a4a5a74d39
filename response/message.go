package response

// A struct type that represents a message with a status and body.
// Message has the following properties:
// - Status: The status of the message.
// - Body: The body of the message.
type Message struct {
	Status string
	Body   string
}

// Response is the confirmation body returned after a successful delete.
type Response struct {
	Message string `json:"message"`
}

// Detail is the body returned with a 404 when a task does not exist.
type Detail struct {
	Detail string `json:"detail"`
}

// Health is the body returned by the root route.
type Health struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}
