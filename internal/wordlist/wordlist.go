// Package wordlist fetches a newline-delimited word list from a file:// or
// http(s):// URL. Local files are memory-mapped so a multi-gigabyte list
// never has to be read fully into the heap before the dictionary index can
// bucket it.
package wordlist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Load fetches rawURL and returns its lines as words, trimmed of surrounding
// whitespace; empty lines are dropped. Supported schemes are "file" and
// "http"/"https"; a URL with no scheme is read as a local file path, and
// any other scheme is an input error.
func Load(ctx context.Context, rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("wordlist: parse URL: %w", err)
	}

	switch u.Scheme {
	case "file", "":
		return loadFile(u.Path)
	case "http", "https":
		return loadHTTP(ctx, rawURL)
	default:
		return nil, fmt.Errorf("wordlist: unsupported URL scheme %q", u.Scheme)
	}
}

func loadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("wordlist: stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return nil, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("wordlist: mmap %s: %w", path, err)
	}
	defer data.Unmap()

	// Walk the mapped region directly rather than copying it into a heap
	// string first -- the whole point of mmap-ing a multi-million-word list.
	return splitLines(data), nil
}

func loadHTTP(ctx context.Context, rawURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wordlist: build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordlist: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordlist: fetch %s: status %s", rawURL, resp.Status)
	}

	tmp, err := os.CreateTemp("", "meshcrack-wordlist-*")
	if err != nil {
		return nil, fmt.Errorf("wordlist: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, fmt.Errorf("wordlist: write temp file: %w", err)
	}

	return loadFile(tmp.Name())
}

// splitLines splits data into trimmed, non-empty lines without copying data
// itself -- only each surviving line is materialized into its own string.
func splitLines(data []byte) []string {
	var words []string
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line = data[:i]
			data = data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		words = append(words, string(line))
	}
	return words
}
