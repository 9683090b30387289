package transport

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func dialPeer(t *testing.T, port int) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", port)

	var conn *websocket.Conn
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", url, err)
	return nil
}

// waitReady polls n.Ready until it reports want or the timeout expires.
func waitReady(t *testing.T, n Notifier, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Ready() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Ready() never became %v", want)
}

func TestWebSocketNotReadyWithoutPeer(t *testing.T) {
	n, err := NewWebSocketNotifier(freePort(t))
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if n.Ready() {
		t.Error("Ready with no peer attached")
	}
	if err := n.Notify([]byte{1}); !errors.Is(err, ErrNoPeer) {
		t.Errorf("Notify without peer = %v, want ErrNoPeer", err)
	}
}

func TestWebSocketSubscribeEnablesDelivery(t *testing.T) {
	port := freePort(t)
	n, err := NewWebSocketNotifier(port)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	peer := dialPeer(t, port)
	defer peer.Close()

	// Connected but not subscribed: still gated, like a BLE peer that has
	// not enabled notifications.
	if n.Ready() {
		t.Error("Ready before the peer subscribed")
	}

	if err := peer.WriteMessage(websocket.TextMessage, []byte("subscribe")); err != nil {
		t.Fatal(err)
	}
	waitReady(t, n, true)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := n.Notify(payload); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, msg, err := peer.ReadMessage()
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Errorf("frame type = %d, want binary", kind)
	}
	if string(msg) != string(payload) {
		t.Errorf("payload = %x, want %x", msg, payload)
	}
}

func TestWebSocketUnsubscribeGatesAgain(t *testing.T) {
	port := freePort(t)
	n, err := NewWebSocketNotifier(port)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	peer := dialPeer(t, port)
	defer peer.Close()

	peer.WriteMessage(websocket.TextMessage, []byte("subscribe"))
	waitReady(t, n, true)

	peer.WriteMessage(websocket.TextMessage, []byte("unsubscribe"))
	waitReady(t, n, false)

	if err := n.Notify([]byte{1}); !errors.Is(err, ErrNoPeer) {
		t.Errorf("Notify after unsubscribe = %v, want ErrNoPeer", err)
	}
}

func TestWebSocketPeerDisconnectDetected(t *testing.T) {
	port := freePort(t)
	n, err := NewWebSocketNotifier(port)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	peer := dialPeer(t, port)
	peer.WriteMessage(websocket.TextMessage, []byte("subscribe"))
	waitReady(t, n, true)

	peer.Close()
	waitReady(t, n, false)
}
