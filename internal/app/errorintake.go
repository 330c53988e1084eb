package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_detail/internal/domain"
)

const (
	hydrationMarker   = "Text content does not match server-rendered HTML"
	nullAccessMarker  = "Cannot read property"
	consoleErrorLimit = 5
	notifyTimeout     = 30 * time.Second
)

// ErrorIntakeService receives browser error batches, drops entries already
// seen, classifies the rest and stores them.
type ErrorIntakeService struct {
	repo     domain.ErrorLogRepository
	cache    domain.Cache
	notifier domain.Notifier // optional
	dedupe   time.Duration
	now      func() time.Time
	pending  sync.WaitGroup
}

func NewErrorIntakeService(r domain.ErrorLogRepository, c domain.Cache, n domain.Notifier, dedupe time.Duration) *ErrorIntakeService {
	return &ErrorIntakeService{
		repo:     r,
		cache:    c,
		notifier: n,
		dedupe:   dedupe,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ErrorIntakeService) Intake(ctx context.Context, b domain.ErrorBatch) (domain.ErrorAnalysis, error) {
	fresh := make([]domain.ClientError, 0, len(b.Errors))
	claimed := make([]string, 0, len(b.Errors))
	seen := make(map[string]struct{}, len(b.Errors))
	for _, e := range b.Errors {
		k := e.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		// A cache outage lets the entry through; the store's unique key
		// still rejects repeats.
		first, err := s.cache.Claim(ctx, claimKey(k), s.dedupe)
		if err != nil {
			log.Warn().Err(err).Msg("error dedupe claim failed")
			fresh = append(fresh, e)
			continue
		}
		if first {
			fresh = append(fresh, e)
			claimed = append(claimed, k)
		}
	}

	var stored []domain.ClientError
	if len(fresh) > 0 {
		var err error
		stored, err = s.repo.InsertErrors(ctx, b.SessionID, fresh)
		if err != nil {
			s.release(context.WithoutCancel(ctx), claimed)
			return domain.ErrorAnalysis{}, err
		}
	}

	a := Analyze(stored, s.now())
	a.TotalErrors = len(b.Errors)
	a.Accepted = len(stored)
	a.Duplicates = len(b.Errors) - len(stored)

	log.Info().
		Str("session", b.SessionID).
		Int("received", a.TotalErrors).
		Int("accepted", a.Accepted).
		Int("critical", len(a.CriticalErrors)).
		Msg("client errors received")

	if s.notifier != nil && a.Accepted > 0 {
		s.notify(ctx, b, a)
	}
	return a, nil
}

// Wait blocks until notifications started by Intake have finished.
func (s *ErrorIntakeService) Wait() { s.pending.Wait() }

func claimKey(k string) string { return "clienterr:" + k }

// release drops dedupe claims for entries that were not stored, so a retry
// of the same batch is accepted.
func (s *ErrorIntakeService) release(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.cache.Del(ctx, claimKey(k)); err != nil {
			log.Warn().Err(err).Msg("error dedupe release failed")
		}
	}
}

// notify sends the summary in the background; it outlives the request and
// is bounded by notifyTimeout.
func (s *ErrorIntakeService) notify(ctx context.Context, b domain.ErrorBatch, a domain.ErrorAnalysis) {
	extra := map[string]any{
		"sessionId":  b.SessionID,
		"errorTypes": a.ErrorTypes,
		"userAgent":  b.UserAgent,
		"referer":    b.Referer,
	}
	msg := summaryLine(a)
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.notifier.Notify(nctx, "client errors", msg, extra); err != nil {
			log.Warn().Err(err).Msg("notify client errors failed")
		}
	}()
}

// Analyze classifies a set of client errors and derives recommendations.
func Analyze(errs []domain.ClientError, at time.Time) domain.ErrorAnalysis {
	a := domain.ErrorAnalysis{
		Timestamp:       at,
		TotalErrors:     len(errs),
		ErrorTypes:      map[string]int{},
		CriticalErrors:  []domain.CriticalError{},
		AutoFixes:       []domain.FixHint{},
		Recommendations: []domain.Recommendation{},
	}
	for _, e := range errs {
		a.ErrorTypes[e.Type]++

		if strings.Contains(e.Message, hydrationMarker) {
			a.CriticalErrors = append(a.CriticalErrors, domain.CriticalError{
				Type: "hydration-error", Error: e, Priority: "high", AutoFix: hydrationFix(e),
			})
		}
		if e.Type == "react-error" {
			a.CriticalErrors = append(a.CriticalErrors, domain.CriticalError{
				Type: "react-error", Error: e, Priority: "high", AutoFix: &domain.FixHint{
					Type:        "react-error-fix",
					Description: "React 컴포넌트 오류",
					Solution:    "컴포넌트 오류 경계 추가 및 상태 관리 개선",
					Priority:    "medium",
				},
			})
		}
		if e.Type == "console-error" && strings.Contains(e.Message, nullAccessMarker) {
			a.AutoFixes = append(a.AutoFixes, domain.FixHint{
				Type:        "null-check-fix",
				Description: "null/undefined 체크 누락",
				Solution:    "옵셔널 체이닝 또는 기본값 설정",
				Priority:    "medium",
			})
		}
	}
	a.Recommendations = recommend(a.ErrorTypes)
	return a
}

func hydrationFix(e domain.ClientError) *domain.FixHint {
	if !strings.Contains(e.Message, "🏠") && !strings.Contains(e.Message, "🗄️") {
		return nil
	}
	return &domain.FixHint{
		Type:        "hydration-fix",
		Description: "이모지 아이콘 불일치 문제",
		Solution:    "아이콘을 텍스트로 변경하거나 일관된 이모지 사용",
		Priority:    "high",
	}
}

func recommend(types map[string]int) []domain.Recommendation {
	out := []domain.Recommendation{}
	if types["hydration-error"] > 0 {
		out = append(out, domain.Recommendation{
			Type:     "hydration",
			Priority: "high",
			Message:  "서버-클라이언트 렌더링 불일치 문제가 있습니다. SSR을 비활성화하거나 일관된 데이터 사용을 권장합니다.",
			Action:   "next.config.js에서 SSR 설정 검토",
		})
	}
	if types["react-error"] > 0 {
		out = append(out, domain.Recommendation{
			Type:     "react",
			Priority: "high",
			Message:  "React 컴포넌트 오류가 발생했습니다. Error Boundary 추가를 권장합니다.",
			Action:   "ErrorBoundary 컴포넌트 추가",
		})
	}
	if types["console-error"] > consoleErrorLimit {
		out = append(out, domain.Recommendation{
			Type:     "console",
			Priority: "medium",
			Message:  "콘솔 오류가 많이 발생합니다. 코드 품질 개선이 필요합니다.",
			Action:   "ESLint 규칙 강화 및 코드 리뷰",
		})
	}
	return out
}

func summaryLine(a domain.ErrorAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "accepted=%d critical=%d", a.Accepted, len(a.CriticalErrors))
	for _, r := range a.Recommendations {
		b.WriteString("\n- ")
		b.WriteString(r.Message)
	}
	return b.String()
}
