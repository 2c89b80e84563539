// Package session holds the in-memory launcher session: the selected player,
// the selected profile and the launch state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mc-launcher/apperr"
	"mc-launcher/identity"
	"mc-launcher/logger"
	"mc-launcher/pipeline"
	"mc-launcher/profile"

	"go.uber.org/zap"
)

type State int

const (
	LoggedOut State = iota
	Idle
	Launching
	Running
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Idle:
		return "idle"
	case Launching:
		return "launching"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Views the launcher switches between.
const (
	ViewHome    = "home"
	ViewConsole = "console"
)

const maxLogEntries = 100

var (
	// ErrNotReady is returned by Launch without a selected identity and profile.
	ErrNotReady = fmt.Errorf("%w: select an account and a profile before launching", apperr.ErrValidation)
	// ErrBusy is returned by Launch while another launch is in progress.
	ErrBusy = fmt.Errorf("%w: the game is already launching or running", apperr.ErrConflict)
)

// Level of a console log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

type LogEntry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Timing controls the pacing of a launch.
type Timing struct {
	Phase  pipeline.Delay
	Settle time.Duration
}

// DefaultTiming matches the pacing players are used to.
var DefaultTiming = Timing{
	Phase:  pipeline.Delay{Min: 600 * time.Millisecond, Max: 1400 * time.Millisecond},
	Settle: time.Second,
}

// Update is emitted to launch observers on every visible change.
type Update struct {
	State    State
	Progress int
	Status   string
	Log      *LogEntry
}

// Session is safe for use from multiple goroutines.
type Session struct {
	mu       sync.Mutex
	state    State
	identity identity.Identity
	profile  profile.Profile
	hasProf  bool
	busy     bool
	gen      uint64 // bumped by Logout
	progress int
	status   string
	view     string
	logs     []LogEntry
	timing   Timing
	now      func() time.Time
	log      *zap.SugaredLogger
}

type Option func(*Session)

func WithTiming(t Timing) Option {
	return func(s *Session) { s.timing = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = log }
}

func New(opts ...Option) *Session {
	s := &Session{
		state:  LoggedOut,
		view:   ViewHome,
		timing: DefaultTiming,
		now:    time.Now,
		log:    logger.Log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot is a copy of the visible session state.
type Snapshot struct {
	State    State
	Identity identity.Identity
	Profile  profile.Profile
	Progress int
	Status   string
	View     string
	Logs     []LogEntry
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:    s.state,
		Identity: s.identity,
		Profile:  s.profile,
		Progress: s.progress,
		Status:   s.status,
		View:     s.view,
		Logs:     append([]LogEntry(nil), s.logs...),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login makes id the current identity. From LoggedOut the session becomes Idle;
// otherwise the state is kept.
func (s *Session) Login(id identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
	if s.state == LoggedOut {
		s.state = Idle
	}
	s.log.Infow("Session login", zap.String("username", id.Username))
}

// SelectProfile makes p the profile used by the next launch.
func (s *Session) SelectProfile(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.hasProf = true
}

// Logout discards the current identity from any state. A launch in progress
// observes the change and is abandoned at its next phase boundary.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity.Identity{}
	s.gen++
	s.state = LoggedOut
	s.progress = 0
	s.status = ""
	s.view = ViewHome
	s.log.Infow("Session logout")
}

// Stop returns a running game to Idle.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return false
	}
	s.state = Idle
	s.status = ""
	s.appendLog(LevelInfo, "Game process exited")
	return true
}

func (s *Session) appendLog(level Level, msg string) LogEntry {
	entry := LogEntry{Time: s.now(), Level: level, Message: msg}
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[len(s.logs)-maxLogEntries:]
	}
	return entry
}

var errLoggedOut = errors.New("session logged out during launch")

// Launch plays the launch phases for the current identity and profile,
// passing every visible change to emit. It returns ErrNotReady without any
// side effect when no identity or profile is selected, and ErrBusy when a
// launch is already running. Cancelling ctx returns the session to Idle;
// logging out abandons the launch at the next phase boundary.
func (s *Session) Launch(ctx context.Context, emit func(Update)) error {
	if emit == nil {
		emit = func(Update) {}
	}

	s.mu.Lock()
	switch {
	case s.state == LoggedOut || s.identity.Username == "" || !s.hasProf:
		s.mu.Unlock()
		return ErrNotReady
	case s.busy || s.state == Running:
		s.mu.Unlock()
		return ErrBusy
	}
	id, prof, gen := s.identity, s.profile, s.gen
	s.busy = true
	s.state = Launching
	s.progress = 0
	s.status = "Preparing Isolation..."
	entry := s.appendLog(LevelInfo, "Launching Profile: "+prof.Name)
	first := Update{State: Launching, Status: s.status, Log: &entry}
	s.mu.Unlock()

	emit(first)
	s.log.Infow("Launch started", zap.String("profile", prof.ID), zap.String("username", id.Username))

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	steps := launchSteps(id, prof)
	for i := range steps {
		run := steps[i].Run
		steps[i].Run = func(ctx context.Context) (string, error) {
			if err := s.checkLoggedIn(gen); err != nil {
				return "", err
			}
			return run(ctx)
		}
	}

	err := pipeline.Run(ctx, steps, s.timing.Phase, func(ev pipeline.Event) {
		emit(s.advance(ev))
	})
	if err == nil {
		err = pipeline.Sleep(ctx, s.timing.Settle)
	}
	if err == nil {
		err = s.checkLoggedIn(gen)
	}
	if err != nil {
		s.abort(err, emit)
		return err
	}

	s.mu.Lock()
	s.state = Running
	s.progress = 0
	s.status = "Game is running"
	s.view = ViewConsole
	done := Update{State: Running, Status: s.status}
	s.mu.Unlock()

	emit(done)
	s.log.Infow("Launch finished", zap.String("profile", prof.ID))
	return nil
}

// checkLoggedIn fails once the session has logged out since generation gen,
// even if someone logged in again afterwards.
func (s *Session) checkLoggedIn(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == LoggedOut || s.gen != gen {
		return errLoggedOut
	}
	return nil
}

func (s *Session) advance(ev pipeline.Event) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = ev.Progress
	s.status = ev.Status
	u := Update{State: s.state, Progress: ev.Progress, Status: ev.Status}
	if ev.Log != "" {
		entry := s.appendLog(LevelInfo, ev.Log)
		u.Log = &entry
	}
	return u
}

func (s *Session) abort(cause error, emit func(Update)) {
	s.mu.Lock()
	if s.state != LoggedOut {
		s.state = Idle
	}
	s.progress = 0
	s.status = ""
	entry := s.appendLog(LevelWarn, "Launch aborted: "+cause.Error())
	u := Update{State: s.state, Log: &entry}
	s.mu.Unlock()

	emit(u)
	s.log.Warnw("Launch aborted", zap.Error(cause))
}

func launchSteps(id identity.Identity, p profile.Profile) []pipeline.Step {
	line := func(msg string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return msg, nil }
	}
	return []pipeline.Step{
		{Progress: 15, Status: "Setting up isolated directories...", Run: line("Directory bound to: " + p.GameDir)},
		{Progress: 35, Status: "Gathering assets...", Run: line("Downloaded 22 asset objects (4.1 MB)")},
		{Progress: 55, Status: "Checking libraries...", Run: line("Core dependencies verified")},
		{Progress: 75, Status: "Applying JVM arguments...", Run: line("Args: " + p.JVMArgs)},
		{Progress: 90, Status: "Injecting authentication...", Run: line(fmt.Sprintf("UUID: %s | Type: %s", id.UUID, id.LoginType))},
		{Progress: 100, Status: "Ascending", Run: line("Process started successfully")},
	}
}
