package mirror

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPutGetRoundTrip(t *testing.T) {
	m := openTemp(t)
	ctx := context.Background()

	if err := m.Put(ctx, KeyConfig, []byte(`{"professores":[]}`)); err != nil {
		t.Fatal(err)
	}
	body, ok, err := m.Get(ctx, KeyConfig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(body) != `{"professores":[]}` {
		t.Fatalf("got %q ok=%v", body, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	m := openTemp(t)
	ctx := context.Background()

	if err := m.Put(ctx, KeyRecords, []byte(`one`)); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(ctx, KeyRecords, []byte(`two`)); err != nil {
		t.Fatal(err)
	}
	body, ok, err := m.Get(ctx, KeyRecords)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(body) != "two" {
		t.Fatalf("got %q, want latest copy", body)
	}
}

func TestGetMissingIsAbsenceNotError(t *testing.T) {
	m := openTemp(t)
	body, ok, err := m.Get(context.Background(), "never-stored")
	if err != nil {
		t.Fatal(err)
	}
	if ok || body != nil {
		t.Fatalf("expected absence, got %q", body)
	}
}
