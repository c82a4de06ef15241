package file_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/neomorfeo/keyledger/internal/adapter/file"
	"github.com/neomorfeo/keyledger/internal/domain"
)

func newTestBackend(t *testing.T) (*file.Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.txt")
	return file.New(path), path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	b, path := newTestBackend(t)

	snap, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Content != "" {
		t.Errorf("Content = %q, want empty", snap.Content)
	}
	if snap.Version != file.Version("") {
		t.Errorf("Version = %q, want %q", snap.Version, file.Version(""))
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat error = %v, want not exist", err)
	}
}

func TestSave_WritesFile(t *testing.T) {
	b, path := newTestBackend(t)

	snap, err := b.Save(context.Background(), "[ts] a\n", "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if snap.Version != file.Version("[ts] a\n") {
		t.Errorf("Version = %q, want hash of content", snap.Version)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(data) != "[ts] a\n" {
		t.Errorf("file = %q, want %q", data, "[ts] a\n")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}

func TestSave_ConditionalConflict(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	stale, _ := b.Load(ctx)
	if _, err := b.Save(ctx, "other", ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := b.Save(ctx, "mine", stale.Version)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, _ := b.Load(ctx)
	if got.Content != "other" {
		t.Errorf("Content = %q, want it untouched", got.Content)
	}
}

func TestSave_ConditionalMatch(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	first, _ := b.Save(ctx, "a", "")
	if _, err := b.Save(ctx, "ab", first.Version); err != nil {
		t.Fatalf("Save with current version failed: %v", err)
	}
}

func TestPut_ReportsCreation(t *testing.T) {
	b, _ := newTestBackend(t)

	_, created, err := b.Put(context.Background(), "a", "")
	if err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if !created {
		t.Error("first Put created = false, want true")
	}

	_, created, err = b.Put(context.Background(), "b", "")
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if created {
		t.Error("second Put created = true, want false")
	}
}

func TestPut_WildcardRequiresFile(t *testing.T) {
	b, path := newTestBackend(t)

	_, _, err := b.Put(context.Background(), "a", "*")
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("Put(*) on missing file error = %v, want ErrVersionConflict", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat error = %v, want not exist", err)
	}

	if _, _, err := b.Put(context.Background(), "a", ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, _, err := b.Put(context.Background(), "b", "*"); err != nil {
		t.Errorf("Put(*) on existing file failed: %v", err)
	}
}

func TestPut_ConcurrentCreateReportsOnce(t *testing.T) {
	_, path := newTestBackend(t)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate instances only share the file lock.
			_, created, err := file.New(path).Put(context.Background(), fmt.Sprintf("w%d", i), "")
			if err != nil {
				t.Errorf("Put failed: %v", err)
				return
			}
			if created {
				mu.Lock()
				creates++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if creates != 1 {
		t.Errorf("created reported %d times, want 1", creates)
	}
}

func TestAppend_CreatesAndExtends(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	if err := b.Append(ctx, "[t1] a\n"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := b.Append(ctx, "[t2] b\n"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, _ := b.Load(ctx)
	if got.Content != "[t1] a\n[t2] b\n" {
		t.Errorf("Content = %q, want both lines", got.Content)
	}
}

func TestAppend_ConcurrentKeepsEveryLine(t *testing.T) {
	b, _ := newTestBackend(t)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Append(context.Background(), fmt.Sprintf("[t] k%d\n", i)); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := b.Load(context.Background())
	if n := strings.Count(got.Content, "\n"); n != writers {
		t.Errorf("got %d lines, want %d", n, writers)
	}
}

func TestAppend_SeparateInstancesShareLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.txt")
	a, b := file.New(path), file.New(path)

	var wg sync.WaitGroup
	for i, backend := range []*file.Backend{a, b, a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := backend.Append(context.Background(), fmt.Sprintf("[t] k%d\n", i)); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := a.Load(context.Background())
	if n := strings.Count(got.Content, "\n"); n != 4 {
		t.Errorf("got %d lines, want 4", n)
	}
}

func TestWriteAtomic_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := file.WriteAtomic(path, []byte("one")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	if err := file.WriteAtomic(path, []byte("two")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("file = %q, want %q", data, "two")
	}
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")

	if err := file.WriteAtomic(path, []byte("x")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
