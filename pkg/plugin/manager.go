package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kiln-plugin/pkg/logger"
)

// ErrUnknownAction is returned when no registered action matches the requested name.
var ErrUnknownAction = errors.New("unknown action")

// Invocation outcomes reported to observers.
const (
	OutcomeOK          = "ok"
	OutcomeSoftFailure = "soft_failure"
	OutcomeNoResult    = "no_result"
	OutcomeInvalid     = "invalid"
)

// Observer is notified after every invocation.
type Observer func(action, outcome string, elapsed time.Duration)

// Outcome summarises a single action invocation.
type Outcome struct {
	ID        string
	Action    string
	OK        bool
	Delivered bool
	Content   Content
	// Err holds a non-fatal failure that produced no deliverable content.
	Err error
}

// Manager keeps track of registered plugins and dispatches action invocations.
type Manager struct {
	mu       sync.RWMutex
	plugins  []Info
	actions  map[string]Action
	aliases  map[string]string
	policy   IsolationPolicy
	logger   *slog.Logger
	observer Observer
}

// Option modifies the behaviour of a Manager.
type Option func(*Manager)

// WithPolicy sets the capability policy enforced at registration.
func WithPolicy(policy IsolationPolicy) Option {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithLogger overrides the manager logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithObserver registers a callback notified after every invocation.
func WithObserver(observer Observer) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// NewManager constructs an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		actions: make(map[string]Action),
		aliases: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.logger == nil {
		m.logger = logger.Named("plugin")
	}
	return m
}

// Register adds every action of p. Registration is all-or-nothing.
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return errors.New("plugin implementation cannot be nil")
	}
	info := p.Info()
	if info.ID == "" {
		return errors.New("plugin id cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pending := make(map[string]Action)
	for _, action := range p.Actions() {
		if action == nil {
			return fmt.Errorf("plugin %s exposes a nil action", info.ID)
		}
		key := normalize(action.Name())
		if key == "" {
			return fmt.Errorf("plugin %s exposes an action without a name", info.ID)
		}
		if _, exists := m.actions[key]; exists {
			return fmt.Errorf("action %s already registered", action.Name())
		}
		if _, exists := pending[key]; exists {
			return fmt.Errorf("action %s declared twice by plugin %s", action.Name(), info.ID)
		}
		if err := m.policy.Permits(action.Capabilities()); err != nil {
			return fmt.Errorf("action %s: %w", action.Name(), err)
		}
		pending[key] = action
	}

	for key, action := range pending {
		m.actions[key] = action
		for _, simile := range action.Similes() {
			alias := normalize(simile)
			if alias == "" || alias == key {
				continue
			}
			if _, taken := m.aliases[alias]; taken {
				continue
			}
			m.aliases[alias] = key
		}
	}
	m.plugins = append(m.plugins, info)
	m.logger.Info("plugin registered", slog.String("plugin", info.ID), slog.Int("actions", len(pending)))
	return nil
}

// Resolve finds an action by name or simile, ignoring case.
func (m *Manager) Resolve(name string) (Action, bool) {
	key := normalize(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if action, ok := m.actions[key]; ok {
		return action, true
	}
	if target, ok := m.aliases[key]; ok {
		return m.actions[target], true
	}
	return nil, false
}

// Actions returns the registered actions sorted by name.
func (m *Manager) Actions() []Action {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]Action, 0, len(m.actions))
	for _, action := range m.actions {
		list = append(list, action)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Plugins returns the metadata of registered plugins in registration order.
func (m *Manager) Plugins() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Info(nil), m.plugins...)
}

// Invoke validates and runs the named action. Validation failures and fatal handler
// errors are returned; every other failure is reported through the Outcome.
func (m *Manager) Invoke(ctx context.Context, name string, rt Runtime, msg Message, cb Callback) (Outcome, error) {
	action, ok := m.Resolve(name)
	if !ok {
		return Outcome{Action: name}, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	id := InvocationID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithInvocationID(ctx, id)
	}
	outcome := Outcome{ID: id, Action: action.Name()}
	log := m.logger.With(slog.String("invocation_id", id), slog.String("action", action.Name()))
	start := time.Now()

	if err := action.Validate(ctx, rt); err != nil {
		log.Error("action validation failed", slog.Any("error", err))
		m.observe(action.Name(), OutcomeInvalid, start)
		return outcome, err
	}

	record := func(content Content) error {
		outcome.Content = content
		outcome.Delivered = true
		if cb == nil {
			return nil
		}
		return cb(content)
	}

	handled, err := action.Handle(ctx, rt, msg, record)
	if err != nil && IsFatal(err) {
		log.Error("action aborted", slog.Any("error", err))
		m.observe(action.Name(), OutcomeInvalid, start)
		return outcome, err
	}
	outcome.OK = handled
	outcome.Err = err

	switch {
	case handled:
		m.observe(action.Name(), OutcomeOK, start)
	case outcome.Delivered:
		m.observe(action.Name(), OutcomeSoftFailure, start)
	default:
		m.observe(action.Name(), OutcomeNoResult, start)
	}
	log.Debug("action finished", slog.Bool("ok", handled), slog.Bool("delivered", outcome.Delivered))
	return outcome, nil
}

func (m *Manager) observe(action, outcome string, start time.Time) {
	if m.observer != nil {
		m.observer(action, outcome, time.Since(start))
	}
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
