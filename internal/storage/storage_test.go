package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func backends(t *testing.T) map[string]func(t *testing.T) KV {
	t.Helper()
	return map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemoryStorage() },
		"file": func(t *testing.T) KV {
			s, err := NewFileStorage(filepath.Join(t.TempDir(), "kv"))
			if err != nil {
				t.Fatalf("NewFileStorage: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) KV {
			s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "history.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStorage: %v", err)
			}
			return s
		},
	}
}

func TestKV_Contract(t *testing.T) {
	t.Parallel()

	for name, open := range backends(t) {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			kv := open(t)
			defer kv.Close()

			if _, err := kv.Get(ctx, "sentiment_history"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: err=%v", err)
			}

			if err := kv.Put(ctx, "sentiment_history", []byte(`[1]`)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := kv.Put(ctx, "sentiment_history", []byte(`[2,1]`)); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, err := kv.Get(ctx, "sentiment_history")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `[2,1]` {
				t.Fatalf("value=%q", got)
			}

			if err := kv.Delete(ctx, "sentiment_history"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := kv.Delete(ctx, "sentiment_history"); err != nil {
				t.Fatalf("Delete twice: %v", err)
			}
			if _, err := kv.Get(ctx, "sentiment_history"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after delete: err=%v", err)
			}
		})
	}
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStorage()
	v := []byte("abc")
	if err := s.Put(ctx, "k", v); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v[0] = 'x'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	if err := first.Put(ctx, "sentiment_history", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	got, err := second.Get(ctx, "sentiment_history")
	if err != nil || string(got) != `[]` {
		t.Fatalf("got=%q err=%v", got, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "sentiment_history.json" {
		t.Fatalf("unexpected files (temp files left behind?): %v", entries)
	}
}

func TestFileStorage_RejectsPathKeys(t *testing.T) {
	t.Parallel()

	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	for _, key := range []string{"", "..", "../etc/passwd", "a/b", "with space"} {
		if err := s.Put(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLStorage(db)
	if err != nil {
		t.Fatalf("NewSQLStorage: %v", err)
	}
	return s, mock
}

func TestSQLStorage_PutUpserts(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	upsert := regexp.QuoteMeta("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)") + `.*ON CONFLICT\(key\) DO UPDATE`
	mock.ExpectExec(upsert).
		WithArgs("sentiment_history", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Put(context.Background(), "sentiment_history", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSQLStorage_Errors(t *testing.T) {
	t.Parallel()

	s, mock := newMockStorage(t)
	diskFull := errors.New("disk full")

	mock.ExpectExec("INSERT INTO kv").WillReturnError(diskFull)
	if err := s.Put(context.Background(), "k", []byte("v")); !errors.Is(err, diskFull) {
		t.Fatalf("Put err=%v", err)
	}

	mock.ExpectQuery("SELECT value FROM kv").WithArgs("k").WillReturnRows(sqlmock.NewRows([]string{"value"}))
	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err=%v", err)
	}

	mock.ExpectExec("DELETE FROM kv").WithArgs("k").WillReturnError(diskFull)
	if err := s.Delete(context.Background(), "k"); !errors.Is(err, diskFull) {
		t.Fatalf("Delete err=%v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
