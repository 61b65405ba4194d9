package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, nil, nil)
	data, err := api.Get(context.Background(), "/api/v1/info", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %s", data)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"bad symbol"}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, nil, nil)
	_, err := api.Get(context.Background(), "/api/v1/book", map[string]string{"symbol": "???"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "bad symbol" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestAccountNotFoundMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	api := NewAPI(server.URL, nil, nil)
	_, err := api.Get(context.Background(), "/api/v1/account", map[string]string{"account": "nobody"})

	var notFound *AccountNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *AccountNotFoundError", err)
	}
	if notFound.Account != "nobody" {
		t.Errorf("account = %s", notFound.Account)
	}
}

func TestAccessRestrictedMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`Access restricted to closed beta participants`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, nil, nil)
	_, err := api.Get(context.Background(), "/api/v1/account", map[string]string{"account": "x"})

	var restricted *AccessRestrictedError
	if !errors.As(err, &restricted) {
		t.Fatalf("error = %v, want *AccessRestrictedError", err)
	}
}

func TestPostRejectsSuccessFalse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"signature expired"}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL, nil, nil)
	_, err := api.Post(context.Background(), "/api/v1/orders/create", map[string]any{}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Message != "signature expired" {
		t.Errorf("message = %s", apiErr.Message)
	}
}
