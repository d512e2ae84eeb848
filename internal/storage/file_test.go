package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	logx "lotwatch/pkg/logx"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.SaveSubscribers(context.Background(), []string{"30", "10", "20"}); err != nil {
		t.Fatalf("SaveSubscribers: %v", err)
	}
	got, err := st.LoadSubscribers(context.Background())
	if err != nil {
		t.Fatalf("LoadSubscribers: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"10", "20", "30"}) {
		t.Fatalf("expected sorted set back, got %v", got)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := st.LoadSubscribers(context.Background())
	if err != nil {
		t.Fatalf("LoadSubscribers: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestFileStoreCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := st.LoadSubscribers(context.Background()); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestFileStoreHumanReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	st, _ := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err := st.SaveSubscribers(context.Background(), []string{"1"}); err != nil {
		t.Fatalf("SaveSubscribers: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[\n  \"1\"\n]\n" {
		t.Fatalf("unexpected file content: %q", string(b))
	}
}

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("driver %q: expected (nil, nil), got (%v, %v)", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenFileRequiresPath(t *testing.T) {
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("expected error for missing path")
	}
}
