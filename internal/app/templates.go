package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel_detail/internal/domain"
)

const defaultTemplateHotel = "default"

// TemplateService keeps named snapshots the editor can load back: whole
// aggregates, section blocks and per-hotel room, package, price and notice sets.
type TemplateService struct {
	repo  domain.TemplateRepository
	now   func() time.Time
	newID func() string
}

func NewTemplateService(r domain.TemplateRepository) *TemplateService {
	return &TemplateService{
		repo:  r,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *TemplateService) Save(ctx context.Context, t domain.Template) (domain.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if !t.Kind.Valid() {
		return domain.Template{}, fmt.Errorf("%w: unknown template kind %q", domain.ErrInvalid, t.Kind)
	}
	if t.Name == "" || isEmptyJSON(t.Data) {
		return domain.Template{}, fmt.Errorf("%w: template name and data are required", domain.ErrInvalid)
	}
	if t.Kind.HotelScoped() && t.HotelID == "" {
		t.HotelID = defaultTemplateHotel
	}
	t.ID = s.newID()
	t.CreatedAt = s.now()
	if err := s.repo.SaveTemplate(ctx, t); err != nil {
		return domain.Template{}, err
	}
	return t, nil
}

// List returns templates of one kind, newest first. Hotel-scoped kinds list
// one hotel's templates ("default" when none is given).
func (s *TemplateService) List(ctx context.Context, kind domain.TemplateKind, hotelID string) ([]domain.Template, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown template kind %q", domain.ErrInvalid, kind)
	}
	if kind.HotelScoped() && hotelID == "" {
		hotelID = defaultTemplateHotel
	}
	out, err := s.repo.ListTemplates(ctx, kind, hotelID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Template{}
	}
	return out, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTemplate(ctx, id)
}

func isEmptyJSON(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`))
}
