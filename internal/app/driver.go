package app

import (
	"context"
	"time"

	"dotnet-quiz-service/internal/domain"
)

// Ticker is the repeating countdown source owned by a Driver.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the wall-clock TickerFunc.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type EventType string

const (
	EventState     EventType = "state"
	EventCompleted EventType = "completed"
)

// Event is published after every change to the session.
type Event struct {
	Type   EventType          `json:"type"`
	View   SessionView        `json:"view"`
	Result *domain.QuizResult `json:"result,omitempty"`
}

type commandKind int

const (
	commandSelect commandKind = iota
	commandNext
	commandPrevious
	commandSkip
)

type command struct {
	kind   commandKind
	option int
	reply  chan error
}

// Driver owns a started Session and the single countdown ticker for it. All
// mutations happen on the goroutine running Run.
type Driver struct {
	session   *Session
	newTicker TickerFunc
	interval  time.Duration
	commands  chan command
	events    chan Event
	done      chan struct{}
}

type DriverOption func(*Driver)

// WithTicker replaces the wall-clock ticker, mainly for tests.
func WithTicker(fn TickerFunc) DriverOption {
	return func(d *Driver) { d.newTicker = fn }
}

func NewDriver(session *Session, opts ...DriverOption) *Driver {
	d := &Driver{
		session:   session,
		newTicker: NewTimeTicker,
		interval:  time.Second,
		commands:  make(chan command),
		events:    make(chan Event, 8),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Events receives session snapshots. Slow readers miss intermediate state
// events but always get the completed event. The channel closes when Run returns.
func (d *Driver) Events() <-chan Event {
	return d.events
}

// Done is closed when Run returns.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Run drives the session until it completes or ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.done)
	defer close(d.events)

	if d.session.State() != InProgress {
		return domain.ErrSessionNotActive
	}

	ticker := d.newTicker(d.interval)
	defer func() { ticker.Stop() }()

	d.publish(ctx, Event{Type: EventState, View: d.session.View()})

	for {
		before := d.session.CurrentIndex()

		var (
			result *domain.QuizResult
			err    error
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			result, err = d.session.Tick()
		case cmd := <-d.commands:
			result, err = d.apply(cmd)
			cmd.reply <- err
		}
		if err != nil {
			continue
		}

		if result != nil {
			d.publish(ctx, Event{Type: EventCompleted, View: d.session.View(), Result: result})
			return nil
		}

		if d.session.CurrentIndex() != before {
			ticker.Stop()
			ticker = d.newTicker(d.interval)
		}
		d.publish(ctx, Event{Type: EventState, View: d.session.View()})
	}
}

func (d *Driver) apply(cmd command) (*domain.QuizResult, error) {
	switch cmd.kind {
	case commandSelect:
		return nil, d.session.SelectOption(cmd.option)
	case commandNext:
		return d.session.Advance(false)
	case commandPrevious:
		return nil, d.session.Previous()
	case commandSkip:
		return d.session.Skip()
	default:
		return nil, domain.ErrSessionNotActive
	}
}

func (d *Driver) publish(ctx context.Context, ev Event) {
	select {
	case d.events <- ev:
		return
	default:
	}
	// Drop the oldest snapshot; Run is the only writer so this frees a slot.
	select {
	case <-d.events:
	default:
	}
	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}

func (d *Driver) send(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case d.commands <- cmd:
	case <-d.done:
		return domain.ErrSessionNotActive
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-cmd.reply
}

// Select stages option for the current question.
func (d *Driver) Select(ctx context.Context, option int) error {
	return d.send(ctx, command{kind: commandSelect, option: option})
}

// Next commits the staged option and moves forward.
func (d *Driver) Next(ctx context.Context) error {
	return d.send(ctx, command{kind: commandNext})
}

// Previous moves back one question.
func (d *Driver) Previous(ctx context.Context) error {
	return d.send(ctx, command{kind: commandPrevious})
}

// Skip moves forward without requiring a selection.
func (d *Driver) Skip(ctx context.Context) error {
	return d.send(ctx, command{kind: commandSkip})
}
