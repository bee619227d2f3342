package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestServerRoutesWebSocket verifies /ws is wired to the hub's upgrade
// handler: a plain GET without upgrade headers must reach the websocket
// handshake and fail it with 400, never fall through to the router's 404.
func TestServerRoutesWebSocket(t *testing.T) {
	server := NewServer(newMockEngine(), t.TempDir())
	t.Cleanup(server.Stop)

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ws")
	if err != nil {
		t.Fatalf("GET /ws: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		t.Fatal("/ws is not routed")
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-upgrade GET /ws status = %d, want 400", resp.StatusCode)
	}
}
