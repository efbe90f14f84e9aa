package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubEmbedder struct {
	vecs [][]float32
	err  error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return s.vecs, s.err
}
func (s *stubEmbedder) Dimensions() int { return 2 }
func (s *stubEmbedder) Name() string    { return "stub" }

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(&stubEmbedder{vecs: [][]float32{{1, 0}}})
	v, err := fn(context.Background(), "pothole")
	if err != nil || len(v) != 2 || v[0] != 1 {
		t.Fatalf("got %v, %v", v, err)
	}

	fn = ToChromemFunc(&stubEmbedder{})
	if _, err := fn(context.Background(), "x"); !errors.Is(err, ErrNoEmbedding) {
		t.Errorf("empty result: err = %v, want ErrNoEmbedding", err)
	}

	fn = ToChromemFunc(&stubEmbedder{err: errors.New("down")})
	if _, err := fn(context.Background(), "x"); err == nil {
		t.Error("expected backend error")
	}
}

func TestOpenAIEmbedderOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "text-embedding-3-small" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", "", srv.URL)
	if e.Dimensions() != 1536 || e.Name() != "text-embedding-3-small" {
		t.Errorf("defaults: %s/%d", e.Name(), e.Dimensions())
	}
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("vectors out of order: %v", vecs)
	}
}

func TestOllamaEmbedderBatches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != DefaultOllamaModel {
			t.Errorf("model = %q", req.Model)
		}
		out := ollamaEmbedResponse{}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{0.5, 0.5})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("", 2, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 3 || calls != 1 {
		t.Errorf("got %d vectors in %d calls", len(vecs), calls)
	}
}

func TestOllamaEmbedderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewOllamaEmbedder("missing", 2, srv.URL).Embed(context.Background(), []string{"a"}); err == nil {
		t.Error("expected error for 404")
	}
}
