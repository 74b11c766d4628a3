package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"haulgo/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestServer(t *testing.T, identity gin.HandlerFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	go hub.Run()
	handler := NewHandler(hub)

	router := gin.New()
	router.GET("/ws", identity, handler.HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandleWebSocketAcceptsAuthedClient(t *testing.T) {
	userID := primitive.NewObjectID()
	srv := newTestServer(t, func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("account_type", models.AccountTypeDriver)
	})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial failed with status %d: %v", status, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if msg.Type != "welcome" {
		t.Errorf("first message type = %q, want welcome", msg.Type)
	}
	if msg.UserID != userID {
		t.Errorf("welcome addressed to %s, want %s", msg.UserID.Hex(), userID.Hex())
	}
}

func TestHandleWebSocketRejectsMissingIdentity(t *testing.T) {
	srv := newTestServer(t, func(c *gin.Context) {})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err == nil {
		t.Fatal("dial succeeded without identity")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("response = %v, want 401", resp)
	}
}
