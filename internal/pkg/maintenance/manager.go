package maintenance

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/metrics/counter"
)

const (
	counterFlushInterval = time.Minute
	tokenSweepInterval   = time.Hour
)

// Manager runs the periodic background tasks: flushing Redis login counters
// to the database and sweeping expired auth tokens.
type Manager struct {
	counterFlushTicker *time.Ticker
	tokenSweepTicker   *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global maintenance manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Maintenance Manager] Starting background tasks")

	m.counterFlushTicker = time.NewTicker(counterFlushInterval)
	m.wg.Add(1)
	go m.counterFlushWorker()

	m.tokenSweepTicker = time.NewTicker(tokenSweepInterval)
	m.wg.Add(1)
	go m.tokenSweepWorker()
}

// Stop stops the background tasks and waits for the workers to drain
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	log.Info("[Maintenance Manager] Stopping background tasks")
	close(m.stopCh)
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.tokenSweepTicker != nil {
		m.tokenSweepTicker.Stop()
	}
	m.wg.Wait()
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// counterFlushWorker periodically flushes login counters from Redis to DB
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Maintenance Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[Maintenance Manager] Counter flush error: %v", err)
			}
		}
	}
}

// tokenSweepWorker periodically deletes expired auth tokens. Consuming a
// token already checks expiry, the sweep only keeps the table from growing.
func (m *Manager) tokenSweepWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Maintenance Manager] Token sweep worker stopping")
			return
		case <-m.tokenSweepTicker.C:
			tokens := repository.GetGlobalFactory().GetTokenRepository()
			deleted, err := tokens.DeleteExpired(time.Now())
			if err != nil {
				log.Errorf("[Maintenance Manager] Token sweep error: %v", err)
				continue
			}
			if deleted > 0 {
				log.Infof("[Maintenance Manager] Deleted %d expired auth tokens", deleted)
			}
		}
	}
}
