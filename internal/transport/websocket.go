package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // node is deployed on a trusted local network
	},
}

// wsNotifier serves a single-peer WebSocket endpoint at /ws. Like the BLE
// link it replaces, only one peer is attached at a time; a new connection
// displaces the previous one. Peers opt into the sample stream by sending
// the text frame "subscribe" and out with "unsubscribe".
type wsNotifier struct {
	server *http.Server

	mu         sync.Mutex
	conn       *websocket.Conn
	subscribed bool
}

// NewWebSocketNotifier starts the WebSocket server on the given port.
func NewWebSocketNotifier(port int) (Notifier, error) {
	n := &wsNotifier{}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", n.handleWS)

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("websocket listen on %s: %w", addr, err)
	}

	n.server = &http.Server{Handler: mux}
	go func() {
		if err := n.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("transport: websocket server error: %v", err)
		}
	}()
	log.Printf("transport: websocket server listening on %s", addr)

	return n, nil
}

func (n *wsNotifier) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: websocket upgrade error: %v", err)
		return
	}

	n.mu.Lock()
	if n.conn != nil {
		// Single-peer link: the newcomer wins.
		n.conn.Close()
	}
	n.conn = conn
	n.subscribed = false
	n.mu.Unlock()
	log.Printf("transport: peer connected from %s", conn.RemoteAddr())

	// Control reader: subscription toggles and disconnect detection.
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				n.dropPeer(conn)
				return
			}
			switch string(msg) {
			case "subscribe":
				n.setSubscribed(conn, true)
				log.Println("transport: peer subscribed")
			case "unsubscribe":
				n.setSubscribed(conn, false)
				log.Println("transport: peer unsubscribed")
			default:
				log.Printf("transport: ignoring control frame %q", msg)
			}
		}
	}()
}

func (n *wsNotifier) setSubscribed(conn *websocket.Conn, v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == conn {
		n.subscribed = v
	}
}

// dropPeer detaches conn if it is still the current peer.
func (n *wsNotifier) dropPeer(conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == conn {
		n.conn.Close()
		n.conn = nil
		n.subscribed = false
		log.Println("transport: peer disconnected")
	}
}

func (n *wsNotifier) Ready() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn != nil && n.subscribed
}

func (n *wsNotifier) Notify(payload []byte) error {
	n.mu.Lock()
	conn := n.conn
	subscribed := n.subscribed
	n.mu.Unlock()

	if conn == nil || !subscribed {
		return ErrNoPeer
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		n.dropPeer(conn)
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (n *wsNotifier) Close() error {
	n.mu.Lock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.subscribed = false
	}
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return n.server.Shutdown(ctx)
}
