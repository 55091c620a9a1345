package models

// BookItemRequest is the request body of create and update calls.
// Pointers let binding tell a missing field from a zero value.
type BookItemRequest struct {
	Title       *string `json:"title" binding:"required"`
	Description *string `json:"description" binding:"required"`
	Completed   *bool   `json:"completed" binding:"required"`
}

// Item converts a bound request into a BookItem
func (r *BookItemRequest) Item() BookItem {
	var item BookItem
	if r.Title != nil {
		item.Title = *r.Title
	}
	if r.Description != nil {
		item.Description = *r.Description
	}
	if r.Completed != nil {
		item.Completed = *r.Completed
	}
	return item
}

// MessageResponse carries a fixed confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	LastProbe map[string]string `json:"last_probe,omitempty"` // scheduled probe, when enabled
}
