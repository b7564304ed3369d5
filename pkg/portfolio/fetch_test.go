package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "data.json")
	testContent := `{"profile": {}}`

	err := os.WriteFile(testFile, []byte(testContent), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	data, err := fetchFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to fetch from file: %v", err)
	}

	if string(data) != testContent {
		t.Errorf("Expected content '%s', got '%s'", testContent, string(data))
	}
}

func TestFetchFromFileNonexistent(t *testing.T) {
	_, err := fetchFromFile("/nonexistent/data.json")
	if err == nil {
		t.Error("Expected error fetching nonexistent file, got nil")
	}
}

func TestFetchFromFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.json")

	err := os.WriteFile(emptyFile, []byte(""), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err = fetchFromFile(emptyFile)
	if err == nil {
		t.Error("Expected error fetching empty file, got nil")
	}
}

func TestFetchFromURL(t *testing.T) {
	testContent := `{"profile": {"name": "Jane"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected JSON accept header, got '%s'", r.Header.Get("Accept"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testContent))
	}))
	defer server.Close()

	data, err := fetchFromURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if string(data) != testContent {
		t.Errorf("Expected content '%s', got '%s'", testContent, string(data))
	}
}

func TestFetchFromURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fetchFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for 404 response, got nil")
	}
}

func TestFetchFromURLEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := fetchFromURL(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for empty body, got nil")
	}
}

func TestFetchWithContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := FetchWithContext(ctx, server.URL)
	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestFetchWithContextEmptySource(t *testing.T) {
	_, err := FetchWithContext(context.Background(), "")
	if err == nil {
		t.Error("Expected error for empty source, got nil")
	}
}

func TestFetchDispatchesToFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "data.json")

	err := os.WriteFile(testFile, []byte("{}"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	data, err := FetchWithContext(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if string(data) != "{}" {
		t.Errorf("Expected '{}', got '%s'", string(data))
	}
}

func TestFetchContextKeepsCallerDeadline(t *testing.T) {
	want := time.Now().Add(45 * time.Second)
	parent, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()

	ctx, stop := fetchContext(parent)
	defer stop()

	got, ok := ctx.Deadline()
	if !ok || !got.Equal(want) {
		t.Errorf("Expected deadline %s to be kept, got %s", want, got)
	}
}

func TestFetchContextDefaultTimeout(t *testing.T) {
	ctx, stop := fetchContext(context.Background())
	defer stop()

	got, ok := ctx.Deadline()
	if !ok {
		t.Fatal("Expected a default deadline, got none")
	}

	if time.Until(got) > DefaultFetchTimeout {
		t.Errorf("Expected deadline within %s, got %s", DefaultFetchTimeout, time.Until(got))
	}
}

func TestFetchFromURLWithCallerDeadline(t *testing.T) {
	// A slow server answered within the caller's deadline must succeed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	data, err := FetchWithContext(ctx, server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if string(data) != "{}" {
		t.Errorf("Expected '{}', got '%s'", string(data))
	}
}
