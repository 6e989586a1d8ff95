package morph

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"worldmorph/internal/core"
)

// DefaultSeed seeds terrain generation when no seed option is given.
const DefaultSeed int64 = 1337

// Status reports the lifecycle state and counters of a session.
type Status struct {
	Initialized bool    `json:"initialized"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TimeStep    float64 `json:"time_step"`
	CycleCount  uint64  `json:"cycle_count"`
}

// Session owns one grid, its parameters, and the step counters. Tick and
// Initialize are exclusive writers; queries share a read lock.
type Session struct {
	mu   sync.RWMutex
	busy atomic.Bool

	seed    int64
	workers int
	logger  *slog.Logger

	params Params
	cur    *Grid
	next   *Grid

	timeStep float64
	cycle    uint64
}

// Option configures a Session.
type Option func(*Session)

// WithSeed sets the terrain seed.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.seed = seed }
}

// WithLogger routes session logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers caps the number of row bands computed in parallel per tick.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewSession returns an uninitialized session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		seed:    DefaultSeed,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		params:  DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) claim(op string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s while another write is in progress", ErrSessionBusy, op)
	}
	return nil
}

func (s *Session) release() { s.busy.Store(false) }

// Initialize allocates a fresh grid, seeds its terrain, and resets the
// counters. A failed call leaves the previous state untouched.
func (s *Session) Initialize(width, height int, params Params) error {
	if err := s.claim("initialize"); err != nil {
		return err
	}
	defer s.release()

	if err := params.Validate(); err != nil {
		return err
	}
	cur, err := NewGrid(width, height)
	if err != nil {
		return err
	}
	seedTerrain(cur, params, s.seed)
	next := cur.Clone()

	s.mu.Lock()
	s.cur, s.next = cur, next
	s.params = params
	s.timeStep = 0
	s.cycle = 0
	s.mu.Unlock()

	s.logger.Info("world initialized", "width", width, "height", height, "seed", s.seed)
	return nil
}

// Reset re-initializes the world with its current dimensions and params.
func (s *Session) Reset() error {
	s.mu.RLock()
	if s.cur == nil {
		s.mu.RUnlock()
		return ErrNotInitialized
	}
	size := s.cur.Size()
	params := s.params
	s.mu.RUnlock()
	return s.Initialize(size.W, size.H, params)
}

// Tick advances the world by one step of deltaTime seconds. The step is all
// or nothing: on error the previous generation and counters are preserved.
func (s *Session) Tick(deltaTime float64) error {
	if math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) || deltaTime < 0 {
		return fmt.Errorf("%w: delta time %g", ErrInvalidParameter, deltaTime)
	}
	if err := s.claim("tick"); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ErrNotInitialized
	}

	if err := advance(s.cur, s.next, s.params, deltaTime, s.seed, s.cycle, s.workers); err != nil {
		s.logger.Error("tick aborted", "cycle", s.cycle, "err", err)
		return err
	}
	s.cur, s.next = s.next, s.cur
	s.timeStep += deltaTime
	s.cycle++

	s.logger.Debug("tick", "cycle", s.cycle, "time_step", s.timeStep)
	return nil
}

// Status reports the lifecycle state and counters.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Status{}
	}
	size := s.cur.Size()
	return Status{
		Initialized: true,
		Width:       size.W,
		Height:      size.H,
		TimeStep:    s.timeStep,
		CycleCount:  s.cycle,
	}
}

// Size reports the grid dimensions, or zero before initialization.
func (s *Session) Size() core.Size {
	st := s.Status()
	return core.Size{W: st.Width, H: st.Height}
}

// Params returns the live parameters.
func (s *Session) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams swaps the live parameters. Grid state is untouched; only
// subsequent ticks see the change.
func (s *Session) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	s.logger.Debug("params updated")
	return nil
}

// ApplyPreset swaps in the named preset's parameters.
func (s *Session) ApplyPreset(name string) error {
	p, err := PresetParams(name)
	if err != nil {
		return err
	}
	return s.SetParams(p)
}

// SetFloatParameter updates a single live parameter by key.
func (s *Session) SetFloatParameter(key string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.params
	if !p.SetFloatParameter(key, value) || p.Validate() != nil {
		return false
	}
	s.params = p
	return true
}

// SetCellAt overwrites one cell of the live grid.
func (s *Session) SetCellAt(x, y int, c Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ErrNotInitialized
	}
	return s.cur.Set(x, y, c)
}
