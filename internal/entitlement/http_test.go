package entitlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsSubscribedActiveStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscribers/dev-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ACTIVE"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	subscribed, err := client.IsSubscribed(context.Background(), "dev-42")
	if err != nil {
		t.Fatalf("is subscribed: %v", err)
	}
	if !subscribed {
		t.Fatalf("expected subscribed for active status")
	}
}

func TestIsSubscribedDegradesToFalse(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"garbage body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		},
		"inactive": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "expired"})
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			client, err := NewClient(Options{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			subscribed, err := client.IsSubscribed(context.Background(), "dev-1")
			if err != nil {
				t.Fatalf("is subscribed: %v", err)
			}
			if subscribed {
				t.Fatalf("expected not subscribed")
			}
		})
	}
}

func TestPresentUpgradeRegistersPlacement(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.PresentUpgrade(context.Background(), "dev-1", TriggerFeatureUnlock); err != nil {
		t.Fatalf("present upgrade: %v", err)
	}
	if gotPath != "/v1/placements/feature_unlock/events" {
		t.Fatalf("path = %q", gotPath)
	}
}
