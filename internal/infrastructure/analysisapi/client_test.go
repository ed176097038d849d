package analysisapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

func TestPredictDecodesPairs(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"category":"business","entities":[["Apple Inc.","ORG"],["March 3, 2024","DATE"]],"summary":"s"}`))
	}))
	defer server.Close()

	result, err := New(server.URL+"/", time.Second).Predict(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if received["text"] != "some text" {
		t.Fatalf("unexpected request body %v", received)
	}
	if len(result.Entities) != 2 || result.Entities[0].Text != "Apple Inc." || result.Entities[1].Label != domain.LabelDate {
		t.Fatalf("unexpected entities %+v", result.Entities)
	}
}

func TestPredictMapsNon2xxToBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Predict(context.Background(), "x")
	if !domain.IsKind(err, domain.ErrBackendStatus) {
		t.Fatalf("expected ErrBackendStatus, got %v", err)
	}
}

func TestPredictSurfacesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).Predict(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if domain.IsKind(err, domain.ErrBackendStatus) {
		t.Fatalf("transport failure must not look like a status error: %v", err)
	}
}

func TestPredictHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := New(server.URL, 50*time.Millisecond).Predict(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced")
	}
}
