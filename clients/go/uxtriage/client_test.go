package uxtriage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "checkout feels broken" {
			t.Errorf("message = %q", req.Message)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			ConversationID: "4b8c9a51-7e7f-4c51-9d71-0f3f7b2a0c11",
			Answer:         "Likely a payment latency issue.",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Chat("", "checkout feels broken")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a conversation ID")
	}
	if resp.Answer != "Likely a payment latency issue." {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestFindEncodesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "delivery fees" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit = %q", got)
		}
		json.NewEncoder(w).Encode(FindResponse{
			Query:   "delivery fees",
			Results: []Issue{{Product: "shop-app", Symptom: "surprise delivery fee at checkout"}},
			Total:   1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Find("delivery fees", 3)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("unexpected results: %+v", resp)
	}
	if resp.Results[0].Product != "shop-app" {
		t.Errorf("product = %q", resp.Results[0].Product)
	}
}

func TestErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "message is required"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Chat("", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	want := "uxtriage error 400: message is required"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Version: "0.1.0"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Health()
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
}
