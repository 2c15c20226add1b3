package feed

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"campfire/internal/core"
	"campfire/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Websocket timings.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn is one subscriber of a room.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Commands accepted by a RoomServer inbox.
type (
	Join struct {
		Conn     Conn
		Hello    Hello
		Reply    chan<- JoinResult
		Observer bool
	}
	JoinResult struct {
		Welcome Welcome
		Err     error
	}
	Leave struct {
		ID   string
		Conn Conn
	}
	Command struct {
		ID       string
		Envelope Envelope
	}
)

// RoomServer serializes access to one Room. Commands go through Inbox and a
// ticker drives presence expiry and auto-burn.
type RoomServer struct {
	Inbox chan any
	Code  string
	// OnEmpty is called from the room goroutine once nobody is left.
	OnEmpty func(code string)

	room    *Room
	clients map[string]Conn
	clock   core.Clock
	tick    time.Duration
	nextID  int
	seen    bool
	users   atomic.Int32
	quit    chan struct{}
	stop    sync.Once
	log     *logrus.Entry
}

// NewRoomServer wraps a fresh room.
func NewRoomServer(code string, mode core.Mode, clock core.Clock, rnd *rand.Rand) *RoomServer {
	if clock == nil {
		clock = core.SystemClock
	}
	return &RoomServer{
		Inbox:   make(chan any, 256),
		Code:    code,
		room:    NewRoom(code, mode, rnd),
		clients: make(map[string]Conn),
		clock:   clock,
		tick:    time.Second,
		nextID:  1,
		quit:    make(chan struct{}),
		log:     logger.Log.WithFields(logrus.Fields{"component": "hub", "room": code}),
	}
}

// Users returns the presence count as of the last change.
func (s *RoomServer) Users() int { return int(s.users.Load()) }

// Stop ends Run.
func (s *RoomServer) Stop() {
	s.stop.Do(func() { close(s.quit) })
}

// Run processes commands until Stop.
func (s *RoomServer) Run() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.Inbox:
			// A stopped room answers nothing, even with commands queued.
			select {
			case <-s.quit:
				return
			default:
			}
			s.handleCommand(cmd)
		case <-ticker.C:
			before := s.room.Version()
			s.room.Tick(s.clock())
			s.publish(before)
		}
	}
}

func (s *RoomServer) handleCommand(cmd any) {
	now := s.clock()
	before := s.room.Version()
	switch c := cmd.(type) {
	case Join:
		id := c.Hello.ID
		if id == "" {
			id = fmt.Sprintf("p%d", s.nextID)
			s.nextID++
		}
		if !c.Observer {
			if err := s.room.Join(id, c.Hello.JoinedAt, now); err != nil {
				c.Reply <- JoinResult{Err: err}
				return
			}
		}
		if old, ok := s.clients[id]; ok && old != c.Conn {
			_ = old.Close()
		}
		s.clients[id] = c.Conn
		s.seen = true
		joined := c.Hello.JoinedAt
		if joined == 0 {
			joined = now.UnixMilli()
		}
		w := Welcome{ID: id, JoinedAt: joined, Mode: s.room.Mode}
		if b, err := Encode(MsgWelcome, s.Code, w); err == nil {
			_ = c.Conn.Send(b)
		}
		c.Reply <- JoinResult{Welcome: w}
		s.log.WithField("participant", id).Info("joined")
		if s.room.Version() == before {
			s.sendStateTo(c.Conn, now)
		}
	case Leave:
		if cur, ok := s.clients[c.ID]; ok && cur == c.Conn {
			delete(s.clients, c.ID)
			s.room.Leave(c.ID)
			s.log.WithField("participant", c.ID).Info("left")
		}
	case Command:
		s.handleEnvelope(c.ID, c.Envelope, now)
	}
	s.publish(before)
}

func (s *RoomServer) handleEnvelope(id string, env Envelope, now time.Time) {
	var err error
	switch env.Type {
	case MsgPing:
		if err = s.room.Heartbeat(id, now); errors.Is(err, ErrNotPresent) {
			err = s.room.Join(id, 0, now)
		}
	case MsgSay:
		var say Say
		if say, err = DecodePayload[Say](env); err == nil {
			err = s.room.Say(id, say.Text, now)
		}
	case MsgBurn:
		if !s.room.Burn(id) {
			err = errors.New("no active message")
		}
	default:
		err = fmt.Errorf("unknown command %q", env.Type)
	}
	if err != nil {
		s.sendError(id, env.Type, err)
	}
}

// publish broadcasts burns and, when the room changed, a fresh snapshot.
func (s *RoomServer) publish(before uint64) {
	now := s.clock()
	for _, b := range s.room.DrainBurned() {
		s.broadcast(MsgBurned, b)
	}
	if s.room.Version() != before {
		s.broadcast(MsgState, s.room.Snapshot(now))
	}
	s.users.Store(int32(s.room.Users()))
	if s.seen && len(s.clients) == 0 && s.room.Empty() && s.OnEmpty != nil {
		s.seen = false
		s.OnEmpty(s.Code)
	}
}

func (s *RoomServer) broadcast(t string, payload any) {
	b, err := Encode(t, s.Code, payload)
	if err != nil {
		s.log.WithError(err).Error("encode broadcast")
		return
	}
	var failed []string
	for id, c := range s.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		_ = s.clients[id].Close()
		delete(s.clients, id)
		s.room.Leave(id)
	}
}

func (s *RoomServer) sendStateTo(c Conn, now time.Time) {
	b, err := Encode(MsgState, s.Code, s.room.Snapshot(now))
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (s *RoomServer) sendError(id, code string, cause error) {
	c, ok := s.clients[id]
	if !ok {
		return
	}
	b, err := Encode(MsgError, s.Code, Error{Code: code, Message: cause.Error()})
	if err != nil {
		return
	}
	_ = c.Send(b)
}

// Hub holds rooms by code. Rooms are created on first join and dropped when
// empty.
type Hub struct {
	Mode  core.Mode
	Clock core.Clock
	Rand  *rand.Rand

	mu     sync.RWMutex
	rooms  map[string]*RoomServer
	closed bool
	rndMu  sync.Mutex
}

// RoomInfo summarizes a room for the listing endpoint.
type RoomInfo struct {
	Code  string `json:"code"`
	Users int    `json:"users"`
}

// NewHub creates a hub whose rooms use mode.
func NewHub(mode core.Mode) *Hub {
	return &Hub{
		Mode:  mode,
		Clock: core.SystemClock,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		rooms: make(map[string]*RoomServer),
	}
}

// GetOrCreateRoom returns the room for code, starting it if needed. It
// returns nil once the hub is closed.
func (h *Hub) GetOrCreateRoom(code string) *RoomServer {
	if code == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if r, ok := h.rooms[code]; ok {
		return r
	}
	h.rndMu.Lock()
	rnd := rand.New(rand.NewSource(h.Rand.Int63()))
	h.rndMu.Unlock()
	r := NewRoomServer(code, h.Mode, h.Clock, rnd)
	r.OnEmpty = func(string) { h.removeRoom(r) }
	h.rooms[code] = r
	go r.Run()
	return r
}

// removeRoom unregisters and stops r under the hub lock, so GetOrCreateRoom
// never hands out a stopped room. Stale holders recover through enter.
func (h *Hub) removeRoom(r *RoomServer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.rooms[r.Code]; ok && cur == r {
		delete(h.rooms, r.Code)
		r.Stop()
	}
}

// enter joins conn to r. If r stops before answering, the join moves to the
// room that replaced it. It reports false once the hub is closed.
func (h *Hub) enter(r *RoomServer, conn Conn, hello Hello, observer bool) (*RoomServer, JoinResult, bool) {
	for r != nil {
		select {
		case <-r.quit:
			r = h.GetOrCreateRoom(r.Code)
			continue
		default:
		}
		reply := make(chan JoinResult, 1)
		select {
		case r.Inbox <- Join{Conn: conn, Hello: hello, Reply: reply, Observer: observer}:
		case <-r.quit:
			r = h.GetOrCreateRoom(r.Code)
			continue
		}
		select {
		case res := <-reply:
			return r, res, true
		case <-r.quit:
			select {
			case res := <-reply:
				return r, res, true
			default:
			}
			r = h.GetOrCreateRoom(r.Code)
		}
	}
	return nil, JoinResult{}, false
}

// ListRooms returns the live rooms sorted by code.
func (h *Hub) ListRooms() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for code, r := range h.rooms {
		out = append(out, RoomInfo{Code: code, Users: r.Users()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Close stops every room. Later joins are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for code, r := range h.rooms {
		r.Stop()
		delete(h.rooms, code)
	}
}

// ServeHTTP upgrades the request and attaches the connection to the room
// named by the "room" query parameter. "observe=1" subscribes without
// joining.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("upgrade failed")
		return
	}
	code := r.URL.Query().Get("room")
	if code == "" {
		code = "lobby"
	}
	room := h.GetOrCreateRoom(code)
	if room == nil {
		_ = conn.Close()
		return
	}
	c := newClient(conn, h, room, r.URL.Query().Get("observe") == "1")
	go c.writePump()
	go c.readPump()
}

// client bridges one websocket connection and a RoomServer.
type client struct {
	conn     *websocket.Conn
	hub      *Hub
	room     *RoomServer
	send     chan []byte
	observer bool
	id       string

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, hub *Hub, room *RoomServer, observer bool) *client {
	return &client{conn: conn, hub: hub, room: room, send: make(chan []byte, 64), observer: observer}
}

// Send queues b; a full queue means the peer is too slow and gets dropped.
func (c *client) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errors.New("send queue full")
	}
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func (c *client) readPump() {
	defer func() {
		if c.id != "" {
			select {
			case c.room.Inbox <- Leave{ID: c.id, Conn: c}:
			case <-c.room.quit:
			}
		}
		_ = c.Close()
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close websocket")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		logger.Log.WithError(err).Debug("handshake read failed")
		return
	}
	env, err := DecodeEnvelope(msg)
	if err != nil || env.Type != MsgHello {
		logger.Log.WithField("type", env.Type).Warn("expected hello")
		return
	}
	var hello Hello
	if len(env.Data) > 0 {
		if hello, err = DecodePayload[Hello](env); err != nil {
			logger.Log.WithError(err).Warn("bad hello")
			return
		}
	}

	room, res, ok := c.hub.enter(c.room, c, hello, c.observer)
	if !ok {
		return
	}
	c.room = room
	if res.Err != nil {
		if b, err := Encode(MsgError, c.room.Code, Error{Code: MsgHello, Message: res.Err.Error()}); err == nil {
			_ = c.Send(b)
		}
		return
	}
	c.id = res.Welcome.ID

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).Warn("websocket read")
			}
			return
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			logger.Log.WithError(err).Debug("dropping frame")
			continue
		}
		if c.observer {
			continue
		}
		select {
		case c.room.Inbox <- Command{ID: c.id, Envelope: env}:
		case <-c.room.quit:
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.WithError(err).Debug("websocket write")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
