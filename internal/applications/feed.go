package applications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

// Snapshot is the full, authoritative list of one owner's records.
// Consumers replace their view with it.
type Snapshot struct {
	Applications []Application `json:"applications"`
	At           time.Time     `json:"at"`

	seq uint64
}

// SnapshotLoader reads the current records of an owner.
type SnapshotLoader func(ctx context.Context, ownerID uuid.UUID) ([]Application, error)

type broadcaster interface {
	Publish(ctx context.Context, channel, payload string) error
	Listen(ctx context.Context, channel string) (<-chan string, func() error, error)
}

type feedObserver interface {
	Subscribed()
	Unsubscribed()
	SnapshotsSent(n int)
}

// FeedParams configures a Feed. Bus is optional; without it notifications
// stay on this instance.
type FeedParams struct {
	Loader  SnapshotLoader
	Bus     broadcaster
	Channel string
	Logger  *logger.Logger
	Metrics feedObserver
}

// Feed fans fresh snapshots out to every live subscription of an owner.
type Feed struct {
	mu      sync.Mutex
	subs    map[uuid.UUID]map[*Subscription]struct{}
	seq     map[uuid.UUID]uint64
	load    SnapshotLoader
	bus     broadcaster
	channel string
	logg    *logger.Logger
	metrics feedObserver
	now     func() time.Time
}

func NewFeed(params FeedParams) (*Feed, error) {
	if params.Loader == nil {
		return nil, errors.New("snapshot loader required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Bus != nil && params.Channel == "" {
		return nil, errors.New("feed channel required when a bus is configured")
	}
	return &Feed{
		subs:    make(map[uuid.UUID]map[*Subscription]struct{}),
		seq:     make(map[uuid.UUID]uint64),
		load:    params.Loader,
		bus:     params.Bus,
		channel: params.Channel,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

// Subscription is one standing query. Updates holds at most one pending
// snapshot; a newer snapshot replaces an unread one. Snapshots whose load
// started before the last accepted one are dropped.
type Subscription struct {
	ownerID uuid.UUID
	feed    *Feed
	ch      chan Snapshot
	done    chan struct{}

	mu      sync.Mutex
	closed  bool
	lastSeq uint64
}

// Updates yields snapshots until the subscription is cancelled, then closes.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	close(s.ch)
	s.mu.Unlock()
	s.feed.remove(s)
}

func (s *Subscription) offer(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || snap.seq <= s.lastSeq {
		return false
	}
	s.lastSeq = snap.seq
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
		return true
	default:
		return false
	}
}

// Subscribe registers a standing query for ownerID and queues the initial
// snapshot. The subscription ends on Cancel or when ctx is done.
func (f *Feed) Subscribe(ctx context.Context, ownerID uuid.UUID) (*Subscription, error) {
	sub := &Subscription{
		ownerID: ownerID,
		feed:    f,
		ch:      make(chan Snapshot, 1),
		done:    make(chan struct{}),
	}

	f.mu.Lock()
	owners, ok := f.subs[ownerID]
	if !ok {
		owners = make(map[*Subscription]struct{})
		f.subs[ownerID] = owners
	}
	owners[sub] = struct{}{}
	seq := f.nextSeqLocked(ownerID)
	f.mu.Unlock()
	if f.metrics != nil {
		f.metrics.Subscribed()
	}

	apps, err := f.load(ctx, ownerID)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	if sub.offer(Snapshot{Applications: apps, At: f.now().UTC(), seq: seq}) && f.metrics != nil {
		f.metrics.SnapshotsSent(1)
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Notify announces that ownerID's records changed.
func (f *Feed) Notify(ctx context.Context, ownerID uuid.UUID) {
	if f.bus != nil {
		err := f.bus.Publish(ctx, f.channel, ownerID.String())
		if err == nil {
			return
		}
		logCtx := f.logg.WithFields(ctx, map[string]any{"user_id": ownerID.String(), "error": err.Error()})
		f.logg.Warn(logCtx, "feed.publish_failed")
	}
	f.refresh(ctx, ownerID)
}

// Run relays notifications from other instances until ctx is done. Without a
// bus it only waits for ctx.
func (f *Feed) Run(ctx context.Context) error {
	if f.bus == nil {
		<-ctx.Done()
		return nil
	}
	messages, closeFn, err := f.bus.Listen(ctx, f.channel)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	for payload := range messages {
		ownerID, err := uuid.Parse(payload)
		if err != nil {
			f.logg.Warn(f.logg.WithField(ctx, "payload", payload), "feed.bad_payload")
			continue
		}
		f.refresh(ctx, ownerID)
	}
	if ctx.Err() != nil {
		return nil
	}
	return errors.New("feed channel closed")
}

// Subscribers reports the open subscriptions for ownerID.
func (f *Feed) Subscribers(ownerID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[ownerID])
}

func (f *Feed) refresh(ctx context.Context, ownerID uuid.UUID) {
	f.mu.Lock()
	targets := make([]*Subscription, 0, len(f.subs[ownerID]))
	for sub := range f.subs[ownerID] {
		targets = append(targets, sub)
	}
	var seq uint64
	if len(targets) > 0 {
		seq = f.nextSeqLocked(ownerID)
	}
	f.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	apps, err := f.load(ctx, ownerID)
	if err != nil {
		logCtx := f.logg.WithUserID(ctx, ownerID.String())
		f.logg.Error(logCtx, "feed.refresh_failed", err)
		return
	}
	snap := Snapshot{Applications: apps, At: f.now().UTC(), seq: seq}
	sent := 0
	for _, sub := range targets {
		if sub.offer(snap) {
			sent++
		}
	}
	if f.metrics != nil {
		f.metrics.SnapshotsSent(sent)
	}
}

// nextSeqLocked numbers a load before it starts. Callers hold f.mu.
func (f *Feed) nextSeqLocked(ownerID uuid.UUID) uint64 {
	f.seq[ownerID]++
	return f.seq[ownerID]
}

func (f *Feed) remove(sub *Subscription) {
	f.mu.Lock()
	owners := f.subs[sub.ownerID]
	_, present := owners[sub]
	delete(owners, sub)
	if len(owners) == 0 {
		delete(f.subs, sub.ownerID)
		delete(f.seq, sub.ownerID)
	}
	f.mu.Unlock()
	if present && f.metrics != nil {
		f.metrics.Unsubscribed()
	}
}
