package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:5480", "http://localhost:5480"},
		{"with https prefix", "https://localhost:5480", "https://localhost:5480"},
		{"without prefix", "localhost:5480", "http://localhost:5480"},
		{"hostname only", "ledger.example.com", "http://ledger.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.server, "alice", 0)
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
			if client.Caller() != "alice" {
				t.Errorf("Caller() = %q, want %q", client.Caller(), "alice")
			}
		})
	}
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		if r.Header.Get(CallerHeader) != "alice" {
			t.Errorf("%s = %q, want %q", CallerHeader, r.Header.Get(CallerHeader), "alice")
		}
		if r.Header.Get("User-Agent") != "nftmesh-cli/1.0" {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), "nftmesh-cli/1.0")
		}
		if r.URL.Path != "/v1/supply" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/v1/supply")
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"code":"OK","data":{"tokens":0}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", 5*time.Second)
	resp, err := client.Get(context.Background(), "/v1/supply")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestClient_Post(t *testing.T) {
	type requestBody struct {
		TokenID uint32 `json:"token_id"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want %q", r.Header.Get("Content-Type"), "application/json")
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.TokenID != 42 {
			t.Errorf("token_id = %d, want 42", body.TokenID)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"code":"OK","data":{"id":42}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", 0)
	resp, err := client.Post(context.Background(), "/v1/tokens/mint", requestBody{TokenID: 42})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
}

func TestClient_Post_NilBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content-Type should not be set for nil body
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("Content-Type should be empty for nil body, got %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", 0)
	resp, err := client.Post(context.Background(), "/admin/v1/backups/snapshots", nil)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	defer resp.Body.Close()
}

func TestClient_NoCaller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(CallerHeader) != "" {
			t.Errorf("%s should be empty, got %q", CallerHeader, r.Header.Get(CallerHeader))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	resp, err := client.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()
}

func TestParseResponse_Success(t *testing.T) {
	type balance struct {
		Account string `json:"account"`
		Balance uint32 `json:"balance"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"code":"OK","message":"","data":{"account":"alice","balance":3}}`))
	}))
	defer server.Close()

	resp, _ := http.Get(server.URL)

	var result balance
	if err := ParseResponse(resp, &result); err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}

	if result.Account != "alice" || result.Balance != 3 {
		t.Errorf("result = %+v, want {Account:alice Balance:3}", result)
	}
}

func TestParseResponse_Error(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErrMsg string
	}{
		{
			name:       "with error envelope",
			status:     404,
			body:       `{"code":"NM-LEDG-4040","message":"token not found"}`,
			wantErrMsg: "[NM-LEDG-4040] token not found",
		},
		{
			name:       "without error envelope",
			status:     500,
			body:       `not json`,
			wantErrMsg: "status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, _ := http.Get(server.URL)
			err := ParseResponse(resp, nil)

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrMsg) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErrMsg)
			}
		})
	}
}

func TestParseResponse_NilTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"code":"OK","data":{"ignored":true}}`))
	}))
	defer server.Close()

	resp, _ := http.Get(server.URL)
	if err := ParseResponse(resp, nil); err != nil {
		t.Errorf("ParseResponse with nil target should not error: %v", err)
	}
}
