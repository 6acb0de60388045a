package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/insightcart/internal/models"
)

const (
	DefaultUserName  = "Market Pro"
	DefaultUserEmail = "user@insightcart.ai"
)

// NewUser fabricates a local identity. Nothing is verified.
func NewUser(name, email string, now time.Time) *models.User {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultUserName
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultUserEmail
	}
	return &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now.UnixMilli(),
	}
}
