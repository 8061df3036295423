package sessionlog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lanternworks/kinesis-core/internal/control"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the sessions schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	schema := `
		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			reason TEXT,
			duration_s REAL,
			preset TEXT NOT NULL DEFAULT ''
		) STRICT;`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndEnd(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	session := &Session{StartedAt: start, Preset: "first_light"}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	end := start.Add(300 * time.Second)
	if err := repo.End(ctx, session.ID, end, "stopped", 300, "gamma_flash"); err != nil {
		t.Fatalf("End: %v", err)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}

	got := result.Sessions[0]
	if got.Reason != "stopped" {
		t.Errorf("reason = %q, want stopped", got.Reason)
	}
	if got.DurationS != 300 {
		t.Errorf("duration = %v, want 300", got.DurationS)
	}
	if got.Preset != "gamma_flash" {
		t.Errorf("preset = %q, want gamma_flash", got.Preset)
	}
	if !got.StartedAt.Equal(start) {
		t.Errorf("started at = %v, want %v", got.StartedAt, start)
	}
	if !got.EndedAt.Equal(end) {
		t.Errorf("ended at = %v, want %v", got.EndedAt, end)
	}
}

func TestEndUnknownSession(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.End(context.Background(), "ses-missing", time.Now(), "stopped", 1, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("End = %v, want ErrNotFound", err)
	}
}

func TestListFilterByReason(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i, reason := range []string{"stopped", "cutoff", "stopped"} {
		s := &Session{StartedAt: start.Add(time.Duration(i) * time.Hour), Preset: "first_light"}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.End(ctx, s.ID, s.StartedAt.Add(time.Minute), reason, 60, "first_light"); err != nil {
			t.Fatalf("End: %v", err)
		}
	}

	result, err := repo.List(ctx, Filter{Reason: "cutoff"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}

	result, err = repo.List(ctx, Filter{Reason: "stopped"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
	// Most recent first.
	if len(result.Sessions) == 2 && result.Sessions[0].StartedAt.Before(result.Sessions[1].StartedAt) {
		t.Error("sessions not ordered most recent first")
	}
}

func TestListEmptyReturnsEmptySlice(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Sessions == nil {
		t.Error("sessions slice is nil, want empty slice")
	}
}

// slowCreateRepo delays the start INSERT, modelling a busy disk.
type slowCreateRepo struct {
	Repository
	delay time.Duration
}

func (r *slowCreateRepo) Create(ctx context.Context, session *Session) error {
	time.Sleep(r.delay)
	return r.Repository.Create(ctx, session)
}

// A session ending on the tick after it started must still close its row,
// even when the start INSERT has not landed yet.
func TestRecorderShortSessionClosesRow(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	recorder := NewRecorder(&slowCreateRepo{Repository: repo, delay: 50 * time.Millisecond}, nil, "site-1", nil)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	recorder.SessionStarted(start, "first_light")
	recorder.SessionEnded(start.Add(20*time.Millisecond), control.ReasonStopped, 20*time.Millisecond, "first_light")
	recorder.Flush()

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if result.Sessions[0].Reason != string(control.ReasonStopped) {
		t.Errorf("reason = %q, want stopped: end write lost against in-flight start", result.Sessions[0].Reason)
	}
}

func TestRecorderPersistsLifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	recorder := NewRecorder(repo, nil, "site-1", nil)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	recorder.SessionStarted(start, "first_light")
	recorder.Flush()

	recorder.SessionEnded(start.Add(120*time.Second), control.ReasonCutoff, 120*time.Second, "first_light")
	recorder.Flush()

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	got := result.Sessions[0]
	if got.Reason != string(control.ReasonCutoff) {
		t.Errorf("reason = %q, want cutoff", got.Reason)
	}
	if got.DurationS != 120 {
		t.Errorf("duration = %v, want 120", got.DurationS)
	}
}
