package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

type ContentRepository interface {
	// Write paths
	Insert(ctx context.Context, c Content) error
	Replace(ctx context.Context, c Content) error
	Delete(ctx context.Context, id string) error

	// Read paths
	Get(ctx context.Context, id string) (Content, error)
	List(ctx context.Context, q ContentQuery) ([]ContentSummary, error)
}

type TemplateRepository interface {
	SaveTemplate(ctx context.Context, t Template) error
	ListTemplates(ctx context.Context, kind TemplateKind, hotelID string) ([]Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type ErrorLogRepository interface {
	// InsertErrors stores entries whose dedupe key is new and returns the
	// ones it stored. Either every new entry is stored or none is.
	InsertErrors(ctx context.Context, sessionID string, es []ClientError) ([]ClientError, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// Claim marks key as seen for ttl and reports whether this call was first.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, message string, extra map[string]any) error
}

type ContentQuery struct {
	TemplatesOnly bool
	Limit         int // <= 0: no limit
}

// ContentSummary is the list view of an aggregate.
type ContentSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsTemplate   bool      `json:"isTemplate"`
	TemplateName *string   `json:"templateName,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
