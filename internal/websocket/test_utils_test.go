package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

// newTestClient builds a registry-insertable client with no transport
// behind it. Tests read deliveries straight off the send channel.
func newTestClient(buf int) *Client {
	c := NewClient(nil, nil, nil, Options{SendBufferSize: buf})
	return c
}

// recvResponse pops one delivery off the client's outbound queue and
// decodes it, failing the test if nothing arrives in time.
func recvResponse(t *testing.T, c *Client) Response {
	t.Helper()

	select {
	case data := <-c.send:
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("failed to decode delivery: %v", err)
		}
		return resp
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return Response{}
	}
}

// assertNoDelivery asserts the client's outbound queue stays empty.
func assertNoDelivery(t *testing.T, c *Client) {
	t.Helper()

	select {
	case data := <-c.send:
		t.Fatalf("unexpected delivery: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}
