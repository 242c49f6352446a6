package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
)

func TestRPC_WebSocketRoundTrip(t *testing.T) {
	rs, ts := newTestRPC(&fakeEngine{})
	defer ts.Close()
	defer rs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	req := []byte(`{"jsonrpc":"2.0","id":1,"method":"system.getVersion"}`)
	if err := conn.Write(ctx, cws.MessageText, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out rpcResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	if out.Error != nil {
		t.Fatalf("error: %+v", out.Error)
	}
	var v VersionResult
	if err := json.Unmarshal(out.Result, &v); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if v.Version != "v0.0.0-test" {
		t.Fatalf("version = %q", v.Version)
	}
}

func TestRPC_WebSocketRejectsUnauthenticated(t *testing.T) {
	rs, ts := newTestRPC(&fakeEngine{})
	defer ts.Close()
	defer rs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := cws.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("dial without auth succeeded")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", resp.StatusCode)
	}
}
