package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines persistence operations for contact messages.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	// List returns all messages, newest first.
	List(ctx context.Context) ([]Message, error)
}

// ValidationError indicates a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "contact message: " + e.Field + " is required"
}

// NewMessage validates the required fields and builds a Message.
func NewMessage(name, phone, email, body string) (*Message, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(phone) == "" {
		return nil, &ValidationError{Field: "phone"}
	}
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "message"}
	}
	return &Message{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}, nil
}
