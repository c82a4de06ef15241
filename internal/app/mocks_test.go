package app_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// --- Backends ---

// memBackend is an in-memory domain.Backend. When versioned is set it reports
// a version and honors conditional saves.
type memBackend struct {
	mu        sync.Mutex
	content   string
	version   int
	versioned bool
	loadErr   error
	saveErr   error
	loads     int
	saves     int

	// gate, when set, holds the first gateSize loads until all of them arrived.
	gate     *sync.WaitGroup
	gateSize int
}

func newGatedBackend(n int, versioned bool) *memBackend {
	gate := &sync.WaitGroup{}
	gate.Add(n)
	return &memBackend{gate: gate, gateSize: n, versioned: versioned}
}

func (m *memBackend) Load(_ context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	if m.loadErr != nil {
		m.mu.Unlock()
		return domain.Snapshot{}, m.loadErr
	}
	snap := domain.Snapshot{Content: m.content}
	if m.versioned {
		snap.Version = strconv.Itoa(m.version)
	}
	m.loads++
	wait := m.gate != nil && m.loads <= m.gateSize
	m.mu.Unlock()

	if wait {
		m.gate.Done()
		m.gate.Wait()
	}
	return snap, nil
}

func (m *memBackend) Save(_ context.Context, content, ifVersion string) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return domain.Snapshot{}, m.saveErr
	}
	if ifVersion != "" && ifVersion != strconv.Itoa(m.version) {
		return domain.Snapshot{}, domain.ErrVersionConflict
	}
	m.content = content
	m.version++
	return domain.Snapshot{Content: m.content, Version: strconv.Itoa(m.version)}, nil
}

func (m *memBackend) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// appendBackend additionally implements domain.Appender.
type appendBackend struct {
	memBackend
	appends int
}

func (a *appendBackend) Append(_ context.Context, line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.appends++
	a.content += line
	return nil
}

// conflictBackend always reports a conflict on conditional saves.
type conflictBackend struct {
	memBackend
}

func (c *conflictBackend) Save(ctx context.Context, content, ifVersion string) (domain.Snapshot, error) {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return domain.Snapshot{}, domain.ErrVersionConflict
}

// --- Publisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	event  domain.Event
	record domain.Record
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, r domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{event: e, record: r})
	return m.err
}

// --- Validator ---

// testValidator walks domain.OpTransitions without the FSM adapter.
type testValidator struct {
	mu    sync.Mutex
	steps []domain.OpStatus
}

func (v *testValidator) Apply(_ context.Context, current domain.OpStatus, event domain.OpEvent) (domain.OpStatus, error) {
	for _, t := range domain.OpTransitions {
		if t.Event == event && t.Src == current {
			v.mu.Lock()
			v.steps = append(v.steps, t.Dst)
			v.mu.Unlock()
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

// --- Clipboard ---

type mockClipboard struct {
	text string
	err  error
}

func (c *mockClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

var errTransport = errors.New("connection refused")
