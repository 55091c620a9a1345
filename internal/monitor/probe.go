package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/AI2HU/bookapp/internal/logger"
)

// Checker reports the reachability of each named backend
type Checker interface {
	Check(ctx context.Context) map[string]error
}

// Probe periodically pings the backends and publishes their state
type Probe struct {
	checker  Checker
	schedule string
	timeout  time.Duration
	up       *prometheus.GaugeVec
	cron     *cron.Cron

	mu      sync.RWMutex
	running bool
	last    map[string]bool
}

// New creates a probe running on the given cron schedule.
// The bookapp_backend_up gauge is registered on reg.
func New(checker Checker, schedule string, timeout time.Duration, reg prometheus.Registerer) *Probe {
	return &Probe{
		checker:  checker,
		schedule: schedule,
		timeout:  timeout,
		up: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bookapp",
			Name:      "backend_up",
			Help:      "Whether the last probe reached the backend (1) or not (0).",
		}, []string{"store"}),
		cron: cron.New(),
		last: make(map[string]bool),
	}
}

// Start runs one probe immediately and then on every tick of the schedule
func (p *Probe) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("probe already running")
	}

	if _, err := p.cron.AddFunc(p.schedule, p.Run); err != nil {
		return fmt.Errorf("failed to add probe schedule %q: %w", p.schedule, err)
	}

	go p.Run()
	p.cron.Start()
	p.running = true

	logger.Info("Backend probe started with schedule: %s", p.schedule)
	return nil
}

// Stop stops the schedule and waits for a running probe to finish
func (p *Probe) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	<-p.cron.Stop().Done()
	logger.Info("Backend probe stopped")
}

// Run pings every backend once
func (p *Probe) Run() {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	for store, err := range p.checker.Check(ctx) {
		up := err == nil

		p.mu.Lock()
		previous, seen := p.last[store]
		p.last[store] = up
		p.mu.Unlock()

		if up {
			p.up.WithLabelValues(store).Set(1)
			if seen && !previous {
				logger.Info("Backend %s is reachable again", store)
			}
			continue
		}

		p.up.WithLabelValues(store).Set(0)
		logger.Warning("Backend %s unreachable: %v", store, err)
	}
}

// Status returns the outcome of the last probe per store
func (p *Probe) Status() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := make(map[string]bool, len(p.last))
	for store, up := range p.last {
		status[store] = up
	}
	return status
}
