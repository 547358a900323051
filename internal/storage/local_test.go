package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return ls
}

func TestLocalStoragePutGet(t *testing.T) {
	ls := newTestLocalStorage(t)
	ctx := context.Background()

	data := []byte("compressed batch payload")
	if err := ls.Put(ctx, "spill/events/20250314-093000-abc.jsonl.snappy", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := ls.Get(ctx, "spill/events/20250314-093000-abc.jsonl.snappy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalStoragePutOverwrites(t *testing.T) {
	ls := newTestLocalStorage(t)
	ctx := context.Background()

	if err := ls.Put(ctx, "key", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := ls.Put(ctx, "key", []byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := ls.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestLocalStorageGetMissing(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, err := ls.Get(context.Background(), "no/such/key")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("got %v, want ErrObjectNotFound", err)
	}
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	ls := newTestLocalStorage(t)
	ctx := context.Background()

	if err := ls.Put(ctx, "key", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := ls.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := ls.Delete(ctx, "key"); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	exists, err := ls.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("object still exists after delete")
	}
}

func TestLocalStorageExists(t *testing.T) {
	ls := newTestLocalStorage(t)
	ctx := context.Background()

	exists, err := ls.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("Exists reported true for absent key")
	}

	if err := ls.Put(ctx, "key", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	exists, err = ls.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("Exists reported false for present key")
	}
}

func TestLocalStorageList(t *testing.T) {
	ls := newTestLocalStorage(t)
	ctx := context.Background()

	keys := []string{
		"spill/events/a.snappy",
		"spill/events/b.snappy",
		"spill/orders/c.snappy",
	}
	for _, k := range keys {
		if err := ls.Put(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	events, err := ls.List(ctx, "spill/events")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(events), events)
	}
	for _, k := range events {
		if k != "spill/events/a.snappy" && k != "spill/events/b.snappy" {
			t.Errorf("unexpected key %q", k)
		}
	}

	all, err := ls.List(ctx, "spill")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d keys, want 3: %v", len(all), all)
	}

	empty, err := ls.List(ctx, "missing/prefix")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d keys for missing prefix, want 0", len(empty))
	}
}
