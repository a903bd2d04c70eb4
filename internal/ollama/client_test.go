package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/berkgokcam/gddstudio/internal/errors"
)

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"llama3.1"},{"name":"mistral"}]}`)
	}))
	defer srv.Close()

	models, err := NewClient(srv.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.1" {
		t.Errorf("models = %+v", models)
	}
}

func TestListModels_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewClient(srv.URL).ListModels(context.Background())
	if !errors.Is(err, errors.ErrUnavailable) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		fmt.Fprint(w, `{"response":"## Story\nOnce upon a time.","done":true}`)
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL).Generate(context.Background(), Request{
		Model:  "llama3.1",
		Prompt: "write the story section",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(text, "Once upon a time.") {
		t.Errorf("text = %q", text)
	}
}

func TestGenerate_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Generate(context.Background(), Request{Model: "nope"})
	if !errors.Is(err, errors.ErrUnavailable) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
}

func TestGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"Hello","done":false}`)
		fmt.Fprintln(w, `{"response":" world","done":false}`)
		fmt.Fprintln(w, `{"done":true}`)
	}))
	defer srv.Close()

	chunks, err := NewClient(srv.URL).GenerateStream(context.Background(), Request{Model: "llama3.1"})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}

	var deltas []string
	var last Chunk
	for chunk := range chunks {
		deltas = append(deltas, chunk.Delta)
		last = chunk
	}

	if len(deltas) != 2 {
		t.Fatalf("got %d chunks, want 2", len(deltas))
	}
	if deltas[0] != "Hello" || deltas[1] != " world" {
		t.Errorf("deltas = %v", deltas)
	}
	if last.Total != "Hello world" {
		t.Errorf("final total = %q, want %q", last.Total, "Hello world")
	}
}

func TestGenerateStream_SkipsMalformedFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"good","done":false}`)
		fmt.Fprintln(w, `{{{not json`)
		fmt.Fprintln(w, `{"response":" tail","done":true}`)
	}))
	defer srv.Close()

	chunks, err := NewClient(srv.URL).GenerateStream(context.Background(), Request{Model: "llama3.1"})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}

	var last Chunk
	for chunk := range chunks {
		last = chunk
	}
	if last.Total != "good tail" {
		t.Errorf("total = %q, want %q (malformed line skipped)", last.Total, "good tail")
	}
}

func TestGenerateStream_OpenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateStream(context.Background(), Request{Model: "llama3.1"})
	if !errors.Is(err, errors.ErrUnavailable) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
}

func TestGenerateStream_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first","done":false}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release // hold the stream open
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := NewClient(srv.URL).GenerateStream(ctx, Request{Model: "llama3.1"})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}

	first, ok := <-chunks
	if !ok || first.Delta != "first" {
		t.Fatalf("first chunk = (%+v, %v)", first, ok)
	}

	cancel()

	// The channel must close after cancellation rather than block forever.
	for range chunks {
	}
}
