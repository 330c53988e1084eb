package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu        sync.Mutex
	docs      map[string]domain.Content
	gets      int
	templates []domain.Template
	errs      map[string]domain.ClientError
	failGet   map[string]error
	// failInsert is returned by the next InsertErrors call, then cleared.
	failInsert error
}

func newFakeRepo(cs ...domain.Content) *fakeRepo {
	r := &fakeRepo{docs: map[string]domain.Content{}, errs: map[string]domain.ClientError{}}
	for _, c := range cs {
		r.docs[c.ID] = c
	}
	return r
}

func (f *fakeRepo) Insert(ctx context.Context, c domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[c.ID] = c
	return nil
}

func (f *fakeRepo) Replace(ctx context.Context, c domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.docs[c.ID] = c
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if err := f.failGet[id]; err != nil {
		return domain.Content{}, err
	}
	c, ok := f.docs[id]
	if !ok {
		return domain.Content{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) List(ctx context.Context, q domain.ContentQuery) ([]domain.ContentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ContentSummary
	for _, c := range f.docs {
		if q.TemplatesOnly && !c.IsTemplate {
			continue
		}
		out = append(out, domain.ContentSummary{ID: c.ID, Name: c.Hotel.Name, IsTemplate: c.IsTemplate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeRepo) SaveTemplate(ctx context.Context, t domain.Template) error {
	f.templates = append(f.templates, t)
	return nil
}

func (f *fakeRepo) ListTemplates(ctx context.Context, kind domain.TemplateKind, hotelID string) ([]domain.Template, error) {
	var out []domain.Template
	for i := len(f.templates) - 1; i >= 0; i-- {
		t := f.templates[i]
		if t.Kind == kind && (hotelID == "" || t.HotelID == hotelID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteTemplate(ctx context.Context, id string) error {
	for i, t := range f.templates {
		if t.ID == id {
			f.templates = append(f.templates[:i], f.templates[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) InsertErrors(ctx context.Context, sessionID string, es []domain.ClientError) ([]domain.ClientError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failInsert; err != nil {
		f.failInsert = nil
		return nil, err
	}
	var stored []domain.ClientError
	for _, e := range es {
		if _, ok := f.errs[e.Key()]; ok {
			continue
		}
		f.errs[e.Key()] = e
		stored = append(stored, e)
	}
	return stored, nil
}

// fakeCache stores JSON like the redis adapter does, so cached values are
// copies and never alias the caller's data.
type fakeCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	claimed map[string]bool
	dels    []string
	failAll bool
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return false, errors.New("cache down")
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errors.New("cache down")
	}
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	delete(c.claimed, key)
	return nil
}

func (c *fakeCache) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return false, errors.New("cache down")
	}
	if c.claimed == nil {
		c.claimed = map[string]bool{}
	}
	if c.claimed[key] {
		return false, nil
	}
	c.claimed[key] = true
	return true, nil
}

type fakePages struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (p *fakePages) RenderString(c domain.Content) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.fail[c.ID] {
		return "", errors.New("template exploded")
	}
	return "<html>" + c.Hotel.Name + "</html>", nil
}

// ---- tests ----

func TestGet_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "h1", Hotel: domain.HotelInfo{Name: "Seaside"}})
	cache := &fakeCache{}
	s := app.NewContentService(repo, cache, &fakePages{}, 10*time.Minute)

	// Miss (first time, populates cache)
	c, err := s.Get(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c.Hotel.Name != "Seaside" {
		t.Fatalf("unexpected hotel: %+v", c.Hotel)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.docs["h1"] = domain.Content{ID: "h1", Hotel: domain.HotelInfo{Name: "SHOULD NOT SEE THIS"}}

	c2, err := s.Get(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c2.Hotel.Name != "Seaside" {
		t.Fatalf("expected cached name, got %s", c2.Hotel.Name)
	}
	if repo.gets != 1 {
		t.Fatalf("expected 1 repo read, got %d", repo.gets)
	}
}

func TestGet_CacheDownFallsBackToRepo(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "h1", Hotel: domain.HotelInfo{Name: "Seaside"}})
	s := app.NewContentService(repo, &fakeCache{failAll: true}, &fakePages{}, time.Minute)

	c, err := s.Get(context.Background(), "h1")
	if err != nil || c.Hotel.Name != "Seaside" {
		t.Fatalf("got %+v, %v", c, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := app.NewContentService(newFakeRepo(), &fakeCache{}, &fakePages{}, time.Minute)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_ClampsLimitAndFilters(t *testing.T) {
	repo := newFakeRepo(
		domain.Content{ID: "a", IsTemplate: true},
		domain.Content{ID: "b"},
		domain.Content{ID: "c", IsTemplate: true},
	)
	s := app.NewContentService(repo, &fakeCache{}, &fakePages{}, time.Minute)

	all, err := s.List(context.Background(), domain.ContentQuery{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %v %v", all, err)
	}
	tpl, _ := s.List(context.Background(), domain.ContentQuery{TemplatesOnly: true, Limit: 1})
	if len(tpl) != 1 || tpl[0].ID != "a" {
		t.Fatalf("unexpected templates: %+v", tpl)
	}

	empty, _ := app.NewContentService(newFakeRepo(), &fakeCache{}, &fakePages{}, time.Minute).
		List(context.Background(), domain.ContentQuery{})
	if empty == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestExport_AddsExportInfo(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "h1", Hotel: domain.HotelInfo{Name: "Seaside"}})
	s := app.NewContentService(repo, &fakeCache{}, &fakePages{}, time.Minute)

	out, err := s.Export(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	b, _ := json.Marshal(out)
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["id"] != "h1" {
		t.Fatalf("document fields must stay at top level: %s", b)
	}
	info, _ := m["exportInfo"].(map[string]any)
	if info["version"] != "1.0" || info["databaseType"] != "hotel_detail_db" || info["exportedAt"] == "" {
		t.Fatalf("unexpected exportInfo: %v", info)
	}
}

func TestPreview_CachedUntilWrite(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "h1", Hotel: domain.HotelInfo{Name: "Seaside"}})
	pages := &fakePages{}
	s := app.NewContentService(repo, &fakeCache{}, pages, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		html, err := s.Preview(ctx, "h1")
		if err != nil || !strings.Contains(html, "Seaside") {
			t.Fatalf("preview: %q %v", html, err)
		}
	}
	if pages.calls != 1 {
		t.Fatalf("expected one render, got %d", pages.calls)
	}

	if _, err := s.UpdateBooking(ctx, "h1", domain.Booking{KakaoChannel: "@sea"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Preview(ctx, "h1"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if pages.calls != 2 {
		t.Fatalf("expected re-render after write, got %d renders", pages.calls)
	}
}

func TestPreview_RenderErrorIsNotCached(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "bad"})
	cache := &fakeCache{}
	s := app.NewContentService(repo, cache, &fakePages{fail: map[string]bool{"bad": true}}, time.Minute)

	if _, err := s.Preview(context.Background(), "bad"); err == nil {
		t.Fatalf("expected render error")
	}
	if _, ok := cache.store["preview:bad"]; ok {
		t.Fatalf("failed render must not be cached")
	}
}

func TestPricing_DefaultsDayTypes(t *testing.T) {
	repo := newFakeRepo(domain.Content{ID: "h1"})
	s := app.NewContentService(repo, &fakeCache{}, &fakePages{}, time.Minute)

	p, err := s.Pricing(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(p.DayTypes) != 3 || p.DayTypes[0].ID != "weekday" {
		t.Fatalf("unexpected day types: %+v", p.DayTypes)
	}
}

func ptr[T any](v T) *T { return &v }
