package river_test

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/keyledger/internal/adapter/river"
	"github.com/neomorfeo/keyledger/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

// startClient sets up and starts a River client, subscribing to completions first.
func startClient(t *testing.T, db *sql.DB) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()
	ctx := context.Background()

	client, err := riveradapter.Setup(ctx, db, riveradapter.Options{})
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so no completion is missed.
	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	t.Cleanup(subscribeCancel)

	if err := client.Start(ctx); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, subscribeChan
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	client, completed := startClient(t, setupTestDB(t))

	pub := riveradapter.NewPublisher(client)
	if err := pub.Publish(context.Background(), domain.EventBackendCleared, domain.Record{OpID: "op-1"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case event := <-completed:
		if event.Job.Kind != "backend.event" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "backend.event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestPublisher_Publish_PreservesEventData(t *testing.T) {
	client, completed := startClient(t, setupTestDB(t))

	pub := riveradapter.NewPublisher(client)
	record := domain.Record{
		OpID:      "op-42",
		Value:     "ABCDE-FGHIJ-KLMNO-PQRST-UVWXY",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := pub.Publish(context.Background(), domain.EventKeySaved, record); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case event := <-completed:
		args := string(event.Job.EncodedArgs)
		for _, want := range []string{
			`"event":"key_saved"`,
			`"op_id":"op-42"`,
			`"value":"ABCDE-FGHIJ-KLMNO-PQRST-UVWXY"`,
			`"timestamp":"2024-01-01T12:00:00Z"`,
		} {
			if !strings.Contains(args, want) {
				t.Errorf("encoded args missing %s, got: %s", want, args)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestLogPublisher_Publish_Logs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	err := riveradapter.LogPublisher{}.Publish(context.Background(), domain.EventKeySaved, domain.Record{
		OpID:  "op-7",
		Value: "secret-value",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"event=key_saved", "op_id=op-7", "value_len=12"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q, got: %s", want, out)
		}
	}
	if strings.Contains(out, "secret-value") {
		t.Errorf("log contains the saved value: %s", out)
	}
}
