package room

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/lukeharwood11/coup-o-clock/config"
	"github.com/lukeharwood11/coup-o-clock/timer"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 5

// GenerateCode returns a random 5 character room code, [A-Z0-9].
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// Manager maps room codes to live rooms and enforces create-vs-join
// semantics: creating a code that is live fails, joining a code that is not
// live fails.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	cfg         config.GameConfig
	broadcaster Broadcaster
	timers      *timer.Manager
	onGameOver  func(summary GameSummary)
}

func NewManager(cfg config.GameConfig, b Broadcaster, timers *timer.Manager,
	onGameOver func(summary GameSummary)) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		cfg:         cfg,
		broadcaster: b,
		timers:      timers,
		onGameOver:  onGameOver,
	}
}

// Create brings up a new room for code. An empty code asks the server to
// generate one. Fails with ErrRoomAlreadyExists when the code is live.
func (m *Manager) Create(code string) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if code == "" {
		for {
			generated, err := GenerateCode()
			if err != nil {
				return nil, err
			}
			if _, taken := m.rooms[generated]; !taken {
				code = generated
				break
			}
		}
	} else if _, exists := m.rooms[code]; exists {
		return nil, ErrRoomAlreadyExists
	}

	r := NewRoom(code, m.cfg, m.broadcaster, m.timers, m.remove, m.onGameOver)
	m.rooms[code] = r
	return r, nil
}

// Get returns the live room for code, failing with ErrRoomNotFound.
func (m *Manager) Get(code string) (*Room, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, exists := m.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (m *Manager) remove(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, code)
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// ListInfo snapshots every live room for the REST and RPC surfaces.
func (m *Manager) ListInfo() []Info {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mutex.RUnlock()

	infos := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	return infos
}

// Shutdown tears down every live room.
func (m *Manager) Shutdown() {
	m.mutex.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	clear(m.rooms)
	m.mutex.Unlock()

	for _, r := range rooms {
		_ = r.Post(Shutdown{})
	}
}
