package artifact

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileSink_PutAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")

	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	ctx := context.Background()
	if err := sink.Put(ctx, "tweet_1_FOO.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("failed to put artifact: %v", err)
	}
	if err := sink.Put(ctx, "crypto_FOO.json", []byte(`{}`)); err != nil {
		t.Fatalf("failed to put artifact: %v", err)
	}

	paths, err := sink.List(ctx)
	if err != nil {
		t.Fatalf("failed to list artifacts: %v", err)
	}
	want := []string{"crypto_FOO.json", "tweet_1_FOO.json"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths mismatch: got %v, want %v", paths, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tweet_1_FOO.json"))
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("content mismatch: got %s", data)
	}
}

func TestFileSink_PutOverwrites(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	ctx := context.Background()
	_ = sink.Put(ctx, "crypto_FOO.json", []byte("old"))
	if err := sink.Put(ctx, "crypto_FOO.json", []byte("new")); err != nil {
		t.Fatalf("failed to overwrite artifact: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(sink.Dir(), "crypto_FOO.json"))
	if string(data) != "new" {
		t.Errorf("expected overwritten content, got %s", data)
	}

	// No temp file left behind
	if _, err := os.Stat(filepath.Join(sink.Dir(), "crypto_FOO.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file should not exist after put")
	}
}

func TestFileSink_ListIgnoresTempAndDirs(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	os.WriteFile(filepath.Join(dir, "half.json.tmp"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "nested"), 0755)

	paths, err := sink.List(context.Background())
	if err != nil {
		t.Fatalf("failed to list artifacts: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no artifacts, got %v", paths)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"crypto_FOO.json", false},
		{"tweet_123_BAR.json", false},
		{"", true},
		{"..", true},
		{"../escape.json", true},
		{`a\b.json`, true},
		{"x.json.tmp", true},
	}

	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestFileSink_PutRejectsInvalidPath(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	if err := sink.Put(context.Background(), "../x.json", []byte("{}")); err == nil {
		t.Error("expected error for path with separator")
	}
}
