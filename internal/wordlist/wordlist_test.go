package wordlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("aardvark\n  zebra  \n\nquail\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	words, err := Load(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"aardvark", "zebra", "quail"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("words[%d] = %q, want %q", i, words[i], w)
		}
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	words, err := Load(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("expected no words, got %v", words)
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("able\nbaker\n"))
	}))
	defer srv.Close()

	words, err := Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(words) != 2 || words[0] != "able" || words[1] != "baker" {
		t.Errorf("got %v", words)
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := Load(context.Background(), "ftp://example.com/words.txt")
	if err == nil {
		t.Fatal("expected an error for an unsupported scheme")
	}
}
