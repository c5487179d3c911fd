package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleCSE_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("cx") != "cx1" || q.Get("num") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":" Go ","link":"https://go.dev","snippet":"The Go language"},
			{"title":"","link":"https://skip.example","snippet":"no title"}
		]}`))
	}))
	defer srv.Close()

	g := &GoogleCSE{APIKey: "k", SearchEngineID: "cx1", Endpoint: srv.URL, HTTPClient: srv.Client()}
	got, err := g.Search(context.Background(), "golang", 25)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Go" || got[0].Source != "google" || got[0].Rank != 1 {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestGoogleCSE_RequiresCredentials(t *testing.T) {
	if _, err := (&GoogleCSE{}).Search(context.Background(), "q", 1); err == nil {
		t.Fatal("expected credentials error")
	}
}
