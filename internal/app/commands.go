package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_detail/internal/domain"
)

const (
	defaultHotelName = "새 호텔"
	copySuffix       = " (복사본)"
)

// Create stores a new aggregate under a fresh id.
func (s *ContentService) Create(ctx context.Context, c domain.Content) (domain.Content, error) {
	if strings.TrimSpace(c.Hotel.Name) == "" {
		c.Hotel.Name = defaultHotelName
	}
	if err := c.Prepare(); err != nil {
		return domain.Content{}, err
	}
	c.ID = s.newID()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	if err := s.repo.Insert(ctx, c); err != nil {
		return domain.Content{}, err
	}
	log.Info().Str("id", c.ID).Str("name", c.Hotel.Name).Msg("hotel created")
	return c, nil
}

// Replace overwrites the whole document. Sections absent from c are cleared.
func (s *ContentService) Replace(ctx context.Context, id string, c domain.Content) (domain.Content, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Content{}, err
	}
	if err := c.Prepare(); err != nil {
		return domain.Content{}, err
	}
	c.ID = id
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, c); err != nil {
		return domain.Content{}, err
	}
	s.invalidate(ctx, id)
	return c, nil
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.Info().Str("id", id).Msg("hotel deleted")
	return nil
}

// Duplicate copies an aggregate (usually a template) under a new id with
// " (복사본)" appended to its names.
func (s *ContentService) Duplicate(ctx context.Context, id string) (domain.Content, error) {
	src, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Content{}, err
	}
	dup := src
	dup.ID = s.newID()
	dup.Hotel.Name = src.Hotel.Name + copySuffix
	if src.TemplateName != nil {
		name := deref(src.TemplateName) + copySuffix
		dup.TemplateName = &name
	}
	dup.CreatedAt = s.now()
	dup.UpdatedAt = dup.CreatedAt
	if err := s.repo.Insert(ctx, dup); err != nil {
		return domain.Content{}, fmt.Errorf("duplicate %s: %w", id, err)
	}
	return dup, nil
}

// UpdateBooking replaces only the booking section.
func (s *ContentService) UpdateBooking(ctx context.Context, id string, b domain.Booking) (domain.Content, error) {
	return s.patch(ctx, id, func(c *domain.Content) { c.Booking = b })
}

// UpdateCancel replaces only the cancellation policy.
func (s *ContentService) UpdateCancel(ctx context.Context, id string, cp domain.CancelPolicy) (domain.Content, error) {
	return s.patch(ctx, id, func(c *domain.Content) { c.Cancel = cp })
}

// SaveNotices replaces the notice list of one hotel.
func (s *ContentService) SaveNotices(ctx context.Context, id string, ns []domain.Notice) (domain.Content, error) {
	return s.patch(ctx, id, func(c *domain.Content) { c.Notices = ns })
}

// UpdatePricing replaces the price configuration of one hotel.
func (s *ContentService) UpdatePricing(ctx context.Context, id string, p domain.Pricing) (domain.Content, error) {
	return s.patch(ctx, id, func(c *domain.Content) { c.Pricing = p })
}

// patch is a read-modify-write of one section; the store still receives the
// full document.
func (s *ContentService) patch(ctx context.Context, id string, apply func(*domain.Content)) (domain.Content, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Content{}, err
	}
	apply(&c)
	if err := c.Prepare(); err != nil {
		return domain.Content{}, err
	}
	c.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, c); err != nil {
		return domain.Content{}, err
	}
	s.invalidate(ctx, id)
	return c, nil
}

// invalidate drops the cached document and its rendered preview.
func (s *ContentService) invalidate(ctx context.Context, id string) {
	for _, key := range []string{contentKey(id), previewKey(id)} {
		if err := s.cache.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache evict failed")
		}
	}
}
