package rpc

import (
	"net"
	"net/rpc"

	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/models"
	"github.com/lukeharwood11/coup-o-clock/room"
	"github.com/lukeharwood11/coup-o-clock/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered with the
// net/rpc default server before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc: player statistics
// and the live room list.
type AdminService struct {
	stats *services.StatsService
	rooms *room.Manager
}

func NewAdminService(stats *services.StatsService, rooms *room.Manager) *AdminService {
	return &AdminService{stats: stats, rooms: rooms}
}

// Register attaches the service to the net/rpc default server.
func (as *AdminService) Register() error {
	return rpc.RegisterName("Admin", as)
}

type GetPlayerStatsArgs struct {
	PlayerName string
}

type GetPlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (as *AdminService) GetPlayerStats(args *GetPlayerStatsArgs, reply *GetPlayerStatsReply) error {
	stats, err := as.stats.GetPlayerStats(args.PlayerName)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []room.Info
}

func (as *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = as.rooms.ListInfo()
	return nil
}
