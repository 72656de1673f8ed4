package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"salonBack/internal/models"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

// WebSocketManager fans inbound LINE events out to connected admin
// dashboards. All operations on clients happen only in Run.
type WebSocketManager struct {
	clients    map[*websocket.Conn]struct{}
	broadcast  chan models.InboundEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan models.InboundEvent, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Publish hands an event to the feed without blocking the webhook path.
func (ws *WebSocketManager) Publish(ev models.InboundEvent) {
	select {
	case ws.broadcast <- ev:
	default:
		log.Println("WS feed full, dropping event")
	}
}

func (ws *WebSocketManager) Run() {
	for {
		select {
		case conn := <-ws.register:
			ws.clients[conn] = struct{}{}
			log.Printf("WS register, clients=%d", len(ws.clients))

		case conn := <-ws.unregister:
			if _, ok := ws.clients[conn]; ok {
				_ = conn.Close()
				delete(ws.clients, conn)
				log.Printf("WS unregister, clients=%d", len(ws.clients))
			}

		case ev := <-ws.broadcast:
			for conn := range ws.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(ev); err != nil {
					log.Printf("WS broadcast error: %v", err)
					_ = conn.Close()
					delete(ws.clients, conn)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	app.wsManager.register <- conn

	go pingLoop(app.wsManager, conn)
	go drainClient(app.wsManager, conn)
}

func pingLoop(ws *WebSocketManager, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			ws.unregister <- conn
			return
		}
	}
}

// The feed is one-way; we still have to read so pongs and close frames
// are processed.
func drainClient(ws *WebSocketManager, conn *websocket.Conn) {
	defer func() {
		ws.unregister <- conn
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
