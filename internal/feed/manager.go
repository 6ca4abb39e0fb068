package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jherrick/sattrack/internal/metrics"
	"github.com/jherrick/sattrack/internal/store"
	"github.com/jherrick/sattrack/internal/telemetry"
)

// statusBufferSize is the capacity of the status notification channel.
const statusBufferSize = 64

// Manager owns the upstream feed connection and the Position Store's
// write path.
type Manager interface {
	// Start begins the connection loop and returns immediately.
	Start(ctx context.Context) error

	// Stop tears down the connection and cancels any pending retry.
	Stop(ctx context.Context) error

	// Status returns a snapshot of connection state and counters.
	Status() StatusSnapshot

	// StatusUpdates returns a channel of status snapshots, published on
	// every state change and received frame.
	StatusUpdates() <-chan StatusSnapshot
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	store  *store.Store
	logger *slog.Logger

	// Replaced by fakes in tests.
	newClient func(ClientConfig, *slog.Logger) Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	snap StatusSnapshot

	statusCh chan StatusSnapshot
	stopOnce sync.Once
}

// NewManager creates a new feed manager writing into st.
func NewManager(cfg ManagerConfig, st *store.Store, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cfg:       cfg,
		store:     st,
		logger:    logger,
		newClient: NewClient,
		snap:      StatusSnapshot{Status: StatusConnecting},
		statusCh:  make(chan StatusSnapshot, statusBufferSize),
	}
}

// Start begins the connection loop.
func (m *manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.setStatus(StatusConnecting, "connecting to satellite feed")

	m.wg.Add(1)
	go m.run()

	m.logger.Info("feed manager started", "url", m.cfg.URL, "reconnect_delay", m.cfg.ReconnectDelay)
	return nil
}

// Stop tears down the connection loop.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping feed manager")

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.stopOnce.Do(func() {
			m.setStatus(StatusStopped, "stopped")
			close(m.statusCh)
		})
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, run loop still live")
	}

	m.logger.Info("feed manager stopped")
	return nil
}

// Status returns the current snapshot.
func (m *manager) Status() StatusSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// StatusUpdates returns the status notification channel.
func (m *manager) StatusUpdates() <-chan StatusSnapshot {
	return m.statusCh
}

// run is the connection loop. It is the only goroutine that dials,
// consumes, and schedules retries, so at most one connection is live
// and at most one retry is pending at any time.
func (m *manager) run() {
	defer m.wg.Done()

	for {
		if m.ctx.Err() != nil {
			return
		}

		client := m.newClient(ClientConfig{
			URL:              m.cfg.URL,
			HandshakeTimeout: m.cfg.HandshakeTimeout,
			StaleTimeout:     m.cfg.StaleTimeout,
			BufferSize:       m.cfg.BufferSize,
		}, m.logger)

		if err := client.Connect(m.ctx); err != nil {
			// A failed dial takes the same recovery path as a close.
			m.logger.Warn("feed dial failed", "url", m.cfg.URL, "error", err)
			if !m.waitRetry("connection failed") {
				return
			}
			continue
		}

		metrics.FeedConnected.Set(1)
		m.setStatus(StatusConnected, "connected to satellite feed")
		m.logger.Info("feed connected", "url", m.cfg.URL)

		m.consume(client)

		client.Close()
		metrics.FeedConnected.Set(0)

		if m.ctx.Err() != nil {
			return
		}
		if !m.waitRetry("connection lost") {
			return
		}
	}
}

// waitRetry marks the manager as reconnecting and waits out the fixed
// reconnect delay. Returns false when teardown interrupts the wait.
func (m *manager) waitRetry(reason string) bool {
	metrics.FeedReconnectsTotal.Inc()

	m.mu.Lock()
	m.snap.Reconnects++
	m.mu.Unlock()

	m.setStatus(StatusReconnecting, fmt.Sprintf("%s, retrying in %s", reason, m.cfg.ReconnectDelay))

	timer := time.NewTimer(m.cfg.ReconnectDelay)
	defer timer.Stop()

	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// consume drains one connection until it errors, closes, or teardown.
func (m *manager) consume(client Client) {
	for {
		select {
		case <-m.ctx.Done():
			return

		case err := <-client.Errors():
			m.logger.Warn("feed connection error", "error", err)
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			m.handleFrame(msg)
		}
	}
}

// handleFrame counts, classifies, and applies one frame. Runs only on
// the run goroutine: updates for the same satellite are applied in
// delivery order, so the last-delivered message wins.
func (m *manager) handleFrame(msg TimestampedMessage) {
	metrics.FeedFramesTotal.Inc()

	m.mu.Lock()
	m.snap.MessagesReceived++
	m.snap.LastMessageAt = msg.ReceivedAt
	m.mu.Unlock()

	classified, err := telemetry.Classify(msg.Data)
	if err != nil {
		// Drop the frame; connection state is untouched.
		metrics.FeedDecodeFailuresTotal.Inc()
		m.logger.Error("dropping undecodable frame", "error", err, "payload", string(msg.Data))
		m.publish()
		return
	}

	metrics.FeedMessagesTotal.WithLabelValues(classified.Kind.String()).Inc()

	switch classified.Kind {
	case telemetry.KindStatus:
		m.logger.Info("feed status message",
			"message", classified.Status.Message,
			"status", classified.Status.Status,
		)
		if classified.Status.Message != "" {
			m.mu.Lock()
			m.snap.StatusText = classified.Status.Message
			m.mu.Unlock()
		}

	case telemetry.KindPosition:
		m.store.Upsert(classified.Position.Record(msg.ReceivedAt))
		metrics.SatellitesTracked.Set(float64(m.store.Len()))

		m.mu.Lock()
		m.snap.PositionsApplied++
		m.mu.Unlock()

	default:
		m.logger.Warn("dropping unrecognized frame", "payload", string(msg.Data))
	}

	m.publish()
}

// setStatus updates connection state and status text, then publishes.
func (m *manager) setStatus(status Status, text string) {
	m.mu.Lock()
	m.snap.Status = status
	m.snap.StatusText = text
	m.mu.Unlock()

	m.publish()
}

// publish sends the current snapshot without blocking. When the channel
// is full the oldest pending snapshot is dropped in favor of the new one.
func (m *manager) publish() {
	m.mu.RLock()
	snap := m.snap
	m.mu.RUnlock()

	select {
	case m.statusCh <- snap:
	default:
		select {
		case <-m.statusCh:
			m.statusCh <- snap
		default:
		}
	}
}
