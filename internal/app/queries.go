package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hotel_detail/internal/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	exportVersion      = "1.0"
	exportDatabaseType = "hotel_detail_db"
)

// PageRenderer produces the preview document of an aggregate.
type PageRenderer interface {
	RenderString(c domain.Content) (string, error)
}

// ContentService owns every read and write of the hotel content aggregate.
// Reads go through the cache; writes evict it.
type ContentService struct {
	repo     domain.ContentRepository
	cache    domain.Cache
	pages    PageRenderer
	cacheTTL time.Duration
	now      func() time.Time
	newID    func() string
}

func NewContentService(r domain.ContentRepository, c domain.Cache, pages PageRenderer, ttl time.Duration) *ContentService {
	return &ContentService{
		repo:     r,
		cache:    c,
		pages:    pages,
		cacheTTL: ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func contentKey(id string) string { return fmt.Sprintf("content:%s", id) }
func previewKey(id string) string { return fmt.Sprintf("preview:%s", id) }

func (s *ContentService) Get(ctx context.Context, id string) (domain.Content, error) {
	key := contentKey(id)
	var c domain.Content
	if ok, _ := s.cache.Get(ctx, key, &c); ok {
		return c, nil
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Content{}, err
	}
	_ = s.cache.Set(ctx, key, c, int(s.cacheTTL.Seconds()))
	return c, nil
}

func (s *ContentService) List(ctx context.Context, q domain.ContentQuery) ([]domain.ContentSummary, error) {
	switch {
	case q.Limit <= 0:
		q.Limit = defaultListLimit
	case q.Limit > maxListLimit:
		q.Limit = maxListLimit
	}
	out, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ContentSummary{}
	}
	return out, nil
}

type ExportInfo struct {
	ExportedAt   time.Time `json:"exportedAt"`
	Version      string    `json:"version"`
	DatabaseType string    `json:"databaseType"`
}

// Export is the downloadable document: the aggregate plus export metadata.
type Export struct {
	domain.Content
	ExportInfo ExportInfo `json:"exportInfo"`
}

func (s *ContentService) Export(ctx context.Context, id string) (Export, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Content: c,
		ExportInfo: ExportInfo{
			ExportedAt:   s.now(),
			Version:      exportVersion,
			DatabaseType: exportDatabaseType,
		},
	}, nil
}

// Preview returns the rendered document of a stored aggregate.
func (s *ContentService) Preview(ctx context.Context, id string) (string, error) {
	key := previewKey(id)
	var html string
	if ok, _ := s.cache.Get(ctx, key, &html); ok {
		return html, nil
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	html, err = s.pages.RenderString(c)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}
	_ = s.cache.Set(ctx, key, html, int(s.cacheTTL.Seconds()))
	return html, nil
}

// Pricing returns the price configuration of one hotel with the default
// day-types filled in.
func (s *ContentService) Pricing(ctx context.Context, id string) (domain.Pricing, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return domain.Pricing{}, err
	}
	p := c.Pricing
	if len(p.DayTypes) == 0 {
		p.DayTypes = domain.DefaultDayTypes()
	}
	return p, nil
}
