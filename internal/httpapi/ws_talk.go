package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/talk"
)

var _ talk.Session = (*wsSession)(nil)

// Heartbeat cadence for the /talk WebSocket, per spec.md §6: ping
// every 5s, drop the session after 10s without a pong.
const (
	wsPingInterval = 5 * time.Second
	wsPongWait     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSession adapts a gorilla/websocket connection to talk.Session,
// serializing writes onto one owning goroutine the way every
// concurrent-write-unsafe *websocket.Conn must be used.
type wsSession struct {
	conn *websocket.Conn
	send chan []byte

	authUserID uint32
	authed     bool
}

func (s *wsSession) Send(msg []byte) {
	select {
	case s.send <- msg:
	default:
		logger.Warn("httpapi: dropping talk message, session send buffer full")
	}
}

func (s *wsSession) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer s.conn.Close()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleTalkWS upgrades the connection and runs the /talk text-frame
// command protocol described in spec.md §6: `/auth`, `/msg`,
// `/history`, `/join`, `/create`, `/delete`, `/remove`, `/admin`,
// `/users`, `/talks`.
func (h *Handlers) HandleTalkWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("httpapi: talk ws upgrade failed", "error", err.Error())
		return
	}

	sess := &wsSession{conn: conn, send: make(chan []byte, 32)}
	go sess.writePump()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	defer func() {
		if sess.authed {
			h.talk.Disconnect(sess.authUserID)
		}
		close(sess.send)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatchTalkCommand(r.Context(), sess, string(raw))
	}
}

func (h *Handlers) dispatchTalkCommand(ctx context.Context, sess *wsSession, line string) {
	cmd, arg, ok := splitCommand(line)
	if !ok {
		sess.Send([]byte("!!! unrecognized command"))
		return
	}

	if cmd != "/auth" && !sess.authed {
		sess.Send([]byte("!!! must /auth before any other command"))
		return
	}

	switch cmd {
	case "/auth":
		h.wsAuth(ctx, sess, arg)
	case "/msg":
		h.wsMessage(ctx, sess, arg)
	case "/history":
		h.wsHistory(ctx, sess, arg)
	case "/join":
		h.wsJoin(ctx, sess, arg)
	case "/create":
		h.wsCreate(ctx, sess, arg)
	case "/delete":
		h.wsDelete(ctx, sess, arg)
	case "/remove":
		h.wsRemove(ctx, sess, arg)
	case "/admin":
		h.wsAdmin(ctx, sess, arg)
	case "/users":
		h.wsUsers(sess, arg)
	case "/talks":
		h.wsTalks(sess, arg)
	default:
		sess.Send([]byte("!!! unrecognized command"))
	}
}

func splitCommand(line string) (cmd, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], "", true
	}
	return parts[0], strings.TrimSpace(parts[1]), true
}

func (h *Handlers) wsAuth(ctx context.Context, sess *wsSession, token string) {
	uid, _, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		sess.Send([]byte("!!! " + err.Error()))
		return
	}
	sess.authUserID = uid
	sess.authed = true
	h.talk.Connect(uid, sess)
	sess.Send([]byte("authed"))
}

type wsMsgBody struct {
	TalkID *uint32 `json:"talk_id"`
	ToID   uint32  `json:"to_id"`
	Text   string  `json:"text"`
}

func (h *Handlers) wsMessage(ctx context.Context, sess *wsSession, arg string) {
	var body wsMsgBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /msg payload"))
		return
	}
	if err := h.talk.Message(ctx, sess.authUserID, body.TalkID, body.ToID, body.Text); err != nil {
		sess.Send([]byte("!!! " + err.Error()))
	}
}

type wsHistoryBody struct {
	TalkID uint32 `json:"talk_id"`
	Limit  int    `json:"limit"`
}

func (h *Handlers) wsHistory(ctx context.Context, sess *wsSession, arg string) {
	var body wsHistoryBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /history payload"))
		return
	}
	if body.Limit <= 0 {
		body.Limit = 50
	}
	msgs, err := h.talk.History(ctx, body.TalkID, body.Limit)
	if err != nil {
		sess.Send([]byte("!!! " + err.Error()))
		return
	}
	payload, _ := json.Marshal(msgs)
	sess.Send(payload)
}

type wsTalkIDBody struct {
	TalkID uint32 `json:"talk_id"`
}

func (h *Handlers) wsJoin(ctx context.Context, sess *wsSession, arg string) {
	var body wsTalkIDBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /join payload"))
		return
	}
	h.talk.Join(ctx, sess.authUserID, body.TalkID)
}

type wsCreateBody struct {
	Name string `json:"name"`
}

func (h *Handlers) wsCreate(ctx context.Context, sess *wsSession, arg string) {
	var body wsCreateBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /create payload"))
		return
	}
	room, err := h.talk.Create(ctx, body.Name, sess.authUserID)
	if err != nil {
		sess.Send([]byte("!!! " + err.Error()))
		return
	}
	payload, _ := json.Marshal(room)
	sess.Send(payload)
}

func (h *Handlers) wsDelete(ctx context.Context, sess *wsSession, arg string) {
	var body wsTalkIDBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /delete payload"))
		return
	}
	h.talk.Delete(ctx, sess.authUserID, body.TalkID)
}

type wsMemberBody struct {
	TalkID uint32 `json:"talk_id"`
	UserID uint32 `json:"user_id"`
}

func (h *Handlers) wsRemove(ctx context.Context, sess *wsSession, arg string) {
	var body wsMemberBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /remove payload"))
		return
	}
	h.talk.Remove(ctx, sess.authUserID, body.UserID, body.TalkID)
}

func (h *Handlers) wsAdmin(ctx context.Context, sess *wsSession, arg string) {
	var body wsMemberBody
	if err := json.Unmarshal([]byte(arg), &body); err != nil {
		sess.Send([]byte("!!! invalid /admin payload"))
		return
	}
	h.talk.Admin(ctx, sess.authUserID, body.UserID, body.TalkID)
}

func (h *Handlers) wsUsers(sess *wsSession, arg string) {
	talkID, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		sess.Send([]byte("!!! invalid /users argument"))
		return
	}
	users := h.talk.Users(sess.authUserID, uint32(talkID))
	payload, _ := json.Marshal(users)
	sess.Send(payload)
}

func (h *Handlers) wsTalks(sess *wsSession, arg string) {
	var uid uint32
	if arg != "" {
		v, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
		if err != nil {
			sess.Send([]byte("!!! invalid /talks argument"))
			return
		}
		uid = uint32(v)
	} else {
		uid = sess.authUserID
	}
	rooms := h.talk.Talks(uid)
	payload, _ := json.Marshal(rooms)
	sess.Send(payload)
}

