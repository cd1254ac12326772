package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"dogfight/domain"
)

func TestAcceptHandler_AcceptsFirstPeerOnly(t *testing.T) {
	transportCh := make(chan domain.Transport, 1)
	srv := httptest.NewServer(NewAcceptHandler(transportCh))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("first dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	select {
	case transport := <-transportCh:
		if transport == nil {
			t.Fatal("handler delivered a nil transport")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("transport was not delivered")
	}

	// 2本目の接続は409で拒否される
	_, resp, err := websocket.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("second dial must fail")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Errorf("second dial response = %+v, want 409", resp)
	}
}

func TestAcceptHandler_RejectsPlainHTTP(t *testing.T) {
	transportCh := make(chan domain.Transport, 1)
	srv := httptest.NewServer(NewAcceptHandler(transportCh))
	defer srv.Close()

	// websocketアップグレードではないリクエストは受理されず、
	// 受付枠も消費されない
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Errorf("plain HTTP request was accepted: %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial after failed upgrade must succeed: %v", err)
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	NewHealthHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
