package naver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientDetail(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"place":{"name":"식당","category":"한식","address":"서울 강남구","x":"127.03","y":"37.5"}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	d, err := c.Detail(context.Background(), "123")
	if err != nil {
		t.Fatal(err)
	}
	if d.ExternalID != "123" || d.Name != "식당" || d.Lng != 127.03 {
		t.Errorf("detail = %+v", d)
	}
	if gotPath != "/place/summary/123" {
		t.Errorf("path = %s", gotPath)
	}
	if gotUA == "" {
		t.Error("request sent without a user agent")
	}
}

func TestClientDetailNotFound(t *testing.T) {
	// A 200 response without a base record still means "no such place".
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.Detail(context.Background(), "123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClientDetailHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	if _, err := c.Detail(context.Background(), "123"); err == nil {
		t.Fatal("no error on 429")
	}
}

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "스타벅스 역삼역점" {
			t.Errorf("query = %q", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`{"result":{"place":{"list":[
			{"id":"1","name":"스타벅스 역삼점","address":"서울 강남구 역삼동","x":"127.03","y":"37.5"},
			{"id":"2","name":"스타벅스 선릉점","address":"서울 강남구 대치동"}
		]}}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	results, err := c.Search(context.Background(), "스타벅스 역삼역점")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].ID != "1" || results[0].Y != "37.5" {
		t.Errorf("result 0 = %+v", results[0])
	}
}
