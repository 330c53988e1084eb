package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
)

type fakeNotifier struct {
	mu      sync.Mutex
	calls   int
	message string
	err     error
	block   chan struct{} // when set, Notify waits for it to close
	ctxErr  error
}

func (n *fakeNotifier) Notify(ctx context.Context, title, message string, extra map[string]any) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.message = message
	n.ctxErr = ctx.Err()
	return n.err
}

func (n *fakeNotifier) snapshot() (int, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls, n.message
}

func hydration(ts string) domain.ClientError {
	return domain.ClientError{
		Type:      "hydration-error",
		Message:   "Warning: Text content does not match server-rendered HTML 🏠",
		Timestamp: ts,
	}
}

func TestIntake_DedupesWithinBatchAndAcrossBatches(t *testing.T) {
	repo := newFakeRepo()
	n := &fakeNotifier{}
	s := app.NewErrorIntakeService(repo, &fakeCache{}, n, time.Hour)
	ctx := context.Background()

	batch := domain.ErrorBatch{SessionID: "s1", Errors: []domain.ClientError{
		hydration("t1"),
		hydration("t1"),
		{Type: "console-error", Message: "Cannot read property 'x' of undefined", Timestamp: "t1"},
	}}
	a, err := s.Intake(ctx, batch)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if a.TotalErrors != 3 || a.Accepted != 2 || a.Duplicates != 1 {
		t.Fatalf("counts: %+v", a)
	}
	s.Wait()
	if calls, _ := n.snapshot(); calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}

	again, err := s.Intake(ctx, batch)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if again.Accepted != 0 || again.Duplicates != 3 {
		t.Fatalf("replayed batch must be dropped: %+v", again)
	}
	s.Wait()
	if calls, _ := n.snapshot(); calls != 1 {
		t.Fatalf("nothing new, no notification expected; got %d", calls)
	}
}

func TestIntake_CacheDownStoreStillDedupes(t *testing.T) {
	repo := newFakeRepo()
	s := app.NewErrorIntakeService(repo, &fakeCache{failAll: true}, nil, time.Hour)
	ctx := context.Background()
	batch := domain.ErrorBatch{Errors: []domain.ClientError{hydration("t1")}}

	if a, _ := s.Intake(ctx, batch); a.Accepted != 1 {
		t.Fatalf("first: %+v", a)
	}
	a, err := s.Intake(ctx, batch)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a.Accepted != 0 || a.Duplicates != 1 {
		t.Fatalf("second: %+v", a)
	}
	if len(a.CriticalErrors) != 0 || len(a.ErrorTypes) != 0 || len(a.Recommendations) != 0 {
		t.Fatalf("entries rejected by the store must not be analyzed: %+v", a)
	}
}

func TestIntake_FailedInsertReleasesClaims(t *testing.T) {
	repo := newFakeRepo()
	repo.failInsert = errors.New("db down")
	cache := &fakeCache{}
	s := app.NewErrorIntakeService(repo, cache, nil, time.Hour)
	ctx := context.Background()
	batch := domain.ErrorBatch{SessionID: "s1", Errors: []domain.ClientError{hydration("t1"), hydration("t2")}}

	if _, err := s.Intake(ctx, batch); err == nil {
		t.Fatal("expected insert error")
	}
	a, err := s.Intake(ctx, batch)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if a.Accepted != 2 || a.Duplicates != 0 {
		t.Fatalf("retry must store the batch: %+v", a)
	}
	if len(repo.errs) != 2 {
		t.Fatalf("stored rows=%d", len(repo.errs))
	}
}

func TestIntake_SlowNotifierDoesNotHoldRequest(t *testing.T) {
	n := &fakeNotifier{block: make(chan struct{})}
	s := app.NewErrorIntakeService(newFakeRepo(), &fakeCache{}, n, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan domain.ErrorAnalysis, 1)
	go func() {
		a, _ := s.Intake(ctx, domain.ErrorBatch{Errors: []domain.ClientError{hydration("t1")}})
		done <- a
	}()
	select {
	case a := <-done:
		if a.Accepted != 1 {
			t.Fatalf("accepted=%d", a.Accepted)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("intake waited for the notifier")
	}

	// the request is over; the notification must still go out
	cancel()
	close(n.block)
	s.Wait()
	if calls, _ := n.snapshot(); calls != 1 {
		t.Fatalf("notifications=%d", calls)
	}
	if n.ctxErr != nil {
		t.Fatalf("notification context cancelled with the request: %v", n.ctxErr)
	}
}

func TestIntake_NotifierFailureIsSwallowed(t *testing.T) {
	n := &fakeNotifier{err: errors.New("webhook down")}
	s := app.NewErrorIntakeService(newFakeRepo(), &fakeCache{}, n, time.Hour)

	if _, err := s.Intake(context.Background(), domain.ErrorBatch{Errors: []domain.ClientError{hydration("t9")}}); err != nil {
		t.Fatalf("notifier error leaked: %v", err)
	}
	s.Wait()
	if calls, msg := n.snapshot(); calls != 1 || !strings.Contains(msg, "accepted=1") {
		t.Fatalf("unexpected notification: %d %q", calls, msg)
	}
}

func TestAnalyze(t *testing.T) {
	errs := []domain.ClientError{hydration("1"), {Type: "react-error", Message: "boom"}}
	for i := 0; i < 6; i++ {
		errs = append(errs, domain.ClientError{Type: "console-error", Message: "Cannot read property 'a'"})
	}
	errs = append(errs, domain.ClientError{Type: "console-error", Message: "other"})

	a := app.Analyze(errs, time.Unix(0, 0))

	if a.ErrorTypes["console-error"] != 7 || a.ErrorTypes["hydration-error"] != 1 || a.ErrorTypes["react-error"] != 1 {
		t.Fatalf("types: %v", a.ErrorTypes)
	}
	if len(a.CriticalErrors) != 2 {
		t.Fatalf("critical: %+v", a.CriticalErrors)
	}
	if a.CriticalErrors[0].Type != "hydration-error" || a.CriticalErrors[0].AutoFix == nil || a.CriticalErrors[0].AutoFix.Type != "hydration-fix" {
		t.Fatalf("hydration entry: %+v", a.CriticalErrors[0])
	}
	if a.CriticalErrors[1].Priority != "high" || a.CriticalErrors[1].AutoFix.Type != "react-error-fix" {
		t.Fatalf("react entry: %+v", a.CriticalErrors[1])
	}
	if len(a.AutoFixes) != 6 {
		t.Fatalf("auto fixes: %d", len(a.AutoFixes))
	}
	var kinds []string
	for _, r := range a.Recommendations {
		kinds = append(kinds, r.Type)
	}
	if strings.Join(kinds, ",") != "hydration,react,console" {
		t.Fatalf("recommendations: %v", kinds)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := app.Analyze(nil, time.Unix(0, 0))
	if a.TotalErrors != 0 || a.CriticalErrors == nil || a.Recommendations == nil || len(a.Recommendations) != 0 {
		t.Fatalf("unexpected: %+v", a)
	}
}
