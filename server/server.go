package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukeharwood11/coup-o-clock/broadcast"
	"github.com/lukeharwood11/coup-o-clock/config"
	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/monitor"
	"github.com/lukeharwood11/coup-o-clock/network"
	"github.com/lukeharwood11/coup-o-clock/persistence"
	"github.com/lukeharwood11/coup-o-clock/room"
	couprpc "github.com/lukeharwood11/coup-o-clock/rpc"
	"github.com/lukeharwood11/coup-o-clock/services"
	"github.com/lukeharwood11/coup-o-clock/session"
	"github.com/lukeharwood11/coup-o-clock/timer"
)

// GameServer ties the transport together: the websocket endpoint players
// speak the game protocol over, the REST surface for room discovery and
// stats, and the admin RPC listener.
type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	statsService   *services.StatsService
	broadcaster    broadcast.Broadcaster
	rpcServer      *couprpc.Server
	monitor        *monitor.Monitor
	httpServer     *http.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database, mon *monitor.Monitor, timers *timer.Manager) *GameServer {
	s := &GameServer{
		cfg:          cfg,
		monitor:      mon,
		statsService: services.NewStatsService(db),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.sessionManager = session.NewManager()
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)
	s.roomManager = room.NewManager(cfg.Game, s.broadcaster, timers, func(summary room.GameSummary) {
		s.statsService.RecordGame(summary)
		names := make([]string, 0, len(summary.Players))
		for _, p := range summary.Players {
			names = append(names, p.Name)
		}
		s.statsService.RecordRoomState(summary.RoomCode, string(game.StatusFinished), names)
		s.monitor.IncGamesCompleted()
	})

	rpcServer, err := couprpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	admin := couprpc.NewAdminService(s.statsService, s.roomManager)
	if err := admin.Register(); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddress,
		Handler: s.routes(),
	}
	return s
}

func (s *GameServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/room/{code}", s.handleWebSocket)
	r.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}", s.handleDeleteRoom).Methods(http.MethodDelete)
	r.HandleFunc("/players/{name}/stats", s.handlePlayerStats).Methods(http.MethodGet)
	r.HandleFunc("/games/recent", s.handleRecentGames).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return s.httpServer.ListenAndServe()
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.roomManager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("HTTP shutdown: %v", err)
	}
}

// --- websocket ---

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerName := r.URL.Query().Get("player_name")
	create := r.URL.Query().Get("create") == "true"

	if playerName == "" {
		http.Error(w, "player_name is required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn), code, playerName, create)
}

func (s *GameServer) handleConnection(conn network.Connection, code, playerName string, create bool) {
	var rm *room.Room
	var err error
	if create {
		rm, err = s.roomManager.Create(code)
	} else {
		rm, err = s.roomManager.Get(code)
	}
	if err != nil {
		s.closeForJoinError(conn, err)
		return
	}

	sess := session.NewSession(uuid.New().String(), playerName, conn)
	sess.RoomCode = rm.Code
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	s.monitor.SetActiveRooms(s.roomManager.Count())

	players, err := rm.Join(sess.ID, playerName)
	if err != nil {
		s.sessionManager.Remove(sess.ID)
		s.monitor.DecOnlinePlayers()
		if create {
			// The creator never seated; tear the fresh room down.
			_ = rm.Post(room.Shutdown{})
		}
		s.closeForJoinError(conn, err)
		return
	}

	logger.Log.Infof("Player %s (%s) joined room %s from %s", playerName, sess.ID, rm.Code, conn.RemoteAddr())

	if err := sess.Send(network.MsgTypeRoomJoined, network.RoomJoinedPayload{
		RoomCode:  rm.Code,
		Players:   players,
		IsCreator: create,
		PlayerID:  sess.ID,
	}); err != nil {
		logger.Log.Warnf("Could not confirm join to %s: %v", sess.ID, err)
	}

	go s.statsService.RecordRoomState(rm.Code, string(game.StatusWaiting), players)

	defer func() {
		logger.Log.Infof("Player %s (%s) left room %s", playerName, sess.ID, rm.Code)
		_ = rm.Post(room.Leave{PlayerID: sess.ID})
		s.sessionManager.Remove(sess.ID)
		s.monitor.DecOnlinePlayers()
		s.monitor.SetActiveRooms(s.roomManager.Count())
		conn.Close()
	}()

	s.readLoop(sess, rm)
}

func (s *GameServer) closeForJoinError(conn network.Connection, err error) {
	switch {
	case errors.Is(err, room.ErrRoomAlreadyExists):
		conn.CloseWithCode(network.CloseRoomExists, "room already exists")
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrRoomClosed):
		conn.CloseWithCode(network.CloseRoomNotFound, "room not found")
	case errors.Is(err, room.ErrDuplicateName):
		conn.CloseWithCode(network.CloseDuplicateName, "name already taken")
	default:
		conn.CloseWithCode(network.CloseInternalError, err.Error())
	}
}

func (s *GameServer) readLoop(sess *session.Session, rm *room.Room) {
	router := network.NewRouter()
	defer router.UnregisterAll()

	router.OnDrop = func(msgType string) {
		s.monitor.IncMessagesDropped()
		logger.Log.Infof("Session %s sent unhandled message type %q", sess.ID, msgType)
	}

	router.Register(network.MsgTypeChat, func(env *network.Envelope) {
		var payload network.ChatPayload
		if err := env.Decode(&payload); err != nil {
			logger.Log.Infof("Session %s sent malformed chat: %v", sess.ID, err)
			return
		}
		_ = rm.Post(room.Chat{PlayerID: sess.ID, MessageID: payload.MessageID, Text: payload.Message})
	})

	router.Register(network.MsgTypeReady, func(env *network.Envelope) {
		var payload network.ReadyPayload
		if err := env.Decode(&payload); err != nil {
			logger.Log.Infof("Session %s sent malformed ready: %v", sess.ID, err)
			return
		}
		_ = rm.Post(room.Ready{PlayerID: sess.ID, Ready: payload.Ready})
	})

	router.Register(network.MsgTypeGameAction, func(env *network.Envelope) {
		var payload network.GameActionPayload
		if err := env.Decode(&payload); err != nil {
			logger.Log.Infof("Session %s sent malformed game action: %v", sess.ID, err)
			return
		}
		_ = rm.Post(room.GameCommand{PlayerID: sess.ID, Request: payload.Action})
	})

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		env, err := sess.Conn.ReadEnvelope()
		if err != nil {
			if isProtocolError(err) {
				// Malformed frames are logged and dropped; the connection
				// stays up.
				logger.Log.Infof("Session %s sent unparseable frame: %v", sess.ID, err)
				s.monitor.IncMessagesDropped()
				continue
			}
			return
		}

		start := time.Now()
		s.monitor.IncMessagesReceived()
		router.Dispatch(env)
		s.monitor.ObserveMessageLatency(time.Since(start))
	}
}

// isProtocolError reports whether err came from frame content rather than
// the socket itself.
func isProtocolError(err error) bool {
	if errors.Is(err, network.ErrMissingType) {
		return true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// --- REST ---

type createRoomRequest struct {
	Code string `json:"code"`
}

func (s *GameServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.roomManager.ListInfo())
}

func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if r.Body != nil {
		// An empty or absent body means "generate a code for me".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	rm, err := s.roomManager.Create(req.Code)
	if err != nil {
		if errors.Is(err, room.ErrRoomAlreadyExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.monitor.SetActiveRooms(s.roomManager.Count())
	go s.statsService.RecordRoomState(rm.Code, string(game.StatusWaiting), nil)
	writeJSON(w, http.StatusCreated, rm.Info())
}

func (s *GameServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	rm, err := s.roomManager.Get(code)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rm.Info())
}

func (s *GameServer) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	rm, err := s.roomManager.Get(code)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	_ = rm.Post(room.Shutdown{})
	s.monitor.SetActiveRooms(s.roomManager.Count())
	w.WriteHeader(http.StatusNoContent)
}

func (s *GameServer) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	stats, err := s.statsService.GetPlayerStats(name)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no stats for player"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *GameServer) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	games, err := s.statsService.RecentGames(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("Failed to encode response: %v", err)
	}
}
