package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_detail/internal/domain"
)

// PublishService writes rendered pages to a static directory as
// hotel-{id}.html.
type PublishService struct {
	repo    domain.ContentRepository
	pages   PageRenderer
	outDir  string
	workers int64
	now     func() time.Time
}

func NewPublishService(r domain.ContentRepository, pages PageRenderer, outDir string, workers int) *PublishService {
	if workers < 1 {
		workers = 1
	}
	return &PublishService{
		repo:    r,
		pages:   pages,
		outDir:  outDir,
		workers: int64(workers),
		now:     time.Now,
	}
}

type PublishReport struct {
	Published int      `json:"published"`
	Failed    int      `json:"failed"`
	Files     []string `json:"files"`
}

// Publish renders c and writes it. Unsaved aggregates (no id) are named
// after the current unix milliseconds.
func (s *PublishService) Publish(ctx context.Context, c domain.Content) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.pages.RenderString(c)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	name := c.ID
	if name == "" {
		name = strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	path := filepath.Join(s.outDir, "hotel-"+filepath.Base(name)+".html")
	if err := writeFileAtomic(path, []byte(html)); err != nil {
		return "", err
	}
	return path, nil
}

// PublishAll renders every stored hotel with a bounded number of workers.
// A failing hotel is logged and counted; the run continues.
func (s *PublishService) PublishAll(ctx context.Context) (PublishReport, error) {
	list, err := s.repo.List(ctx, domain.ContentQuery{})
	if err != nil {
		return PublishReport{}, err
	}

	var (
		mu  sync.Mutex
		rep = PublishReport{Files: []string{}}
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(s.workers)
	)
	for _, sum := range list {
		// acquire before launching the goroutine; release inside it
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return rep, err
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)

			path, err := s.publishOne(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				log.Warn().Str("id", id).Err(err).Msg("publish failed")
				return
			}
			rep.Published++
			rep.Files = append(rep.Files, path)
			log.Debug().Str("id", id).Str("file", path).Msg("publish ok")
		}(sum.ID)
	}
	wg.Wait()
	return rep, nil
}

func (s *PublishService) publishOne(ctx context.Context, id string) (string, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Publish(ctx, c)
}

func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".hotel-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
