package workers

import (
	"context"
	"lifeline/models"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// StaleCaseSource is the part of the case service the worker drives.
type StaleCaseSource interface {
	ListStale(ctx context.Context, age time.Duration) ([]models.EmergencyCase, error)
	FlagStale(ctx context.Context, c models.EmergencyCase)
}

type EscalationWorkerConfig struct {
	Interval time.Duration `json:"interval"`
	After    time.Duration `json:"after"`
	// ClaimTTL bounds how long a Redis claim keeps other instances from
	// re-flagging the same case.
	ClaimTTL time.Duration `json:"claimTtl"`
}

type EscalationWorkerStats struct {
	Sweeps       int64     `json:"sweeps"`
	CasesFlagged int64     `json:"casesFlagged"`
	Errors       int64     `json:"errors"`
	LastSweepAt  time.Time `json:"lastSweepAt"`
	StartTime    time.Time `json:"startTime"`
}

// EscalationWorker periodically flags pending cases that nobody has
// acknowledged. Each case is flagged at most once per process; with Redis
// configured, at most once across instances.
type EscalationWorker struct {
	source StaleCaseSource
	redis  *redis.Client
	config EscalationWorkerConfig

	flagged   map[string]struct{}
	flaggedMu sync.Mutex

	isRunning bool
	mutex     sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats      EscalationWorkerStats
	statsMutex sync.RWMutex
}

const escalationClaimPrefix = "lifeline:escalated:"

func NewEscalationWorker(source StaleCaseSource, redisClient *redis.Client, config EscalationWorkerConfig) *EscalationWorker {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.After <= 0 {
		config.After = 5 * time.Minute
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EscalationWorker{
		source:  source,
		redis:   redisClient,
		config:  config,
		flagged: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		stats:   EscalationWorkerStats{StartTime: time.Now()},
	}
}

func (ew *EscalationWorker) Start() error {
	ew.mutex.Lock()
	defer ew.mutex.Unlock()

	if ew.isRunning {
		return nil
	}
	ew.isRunning = true

	logrus.Infof("Starting Escalation Worker (every %s, after %s)", ew.config.Interval, ew.config.After)

	ew.wg.Add(1)
	go ew.loop()
	return nil
}

func (ew *EscalationWorker) Stop() error {
	ew.mutex.Lock()
	if !ew.isRunning {
		ew.mutex.Unlock()
		return nil
	}
	ew.isRunning = false
	ew.mutex.Unlock()

	logrus.Info("Stopping Escalation Worker...")
	ew.cancel()
	ew.wg.Wait()
	logrus.Info("Escalation Worker stopped successfully")
	return nil
}

func (ew *EscalationWorker) loop() {
	defer ew.wg.Done()

	ticker := time.NewTicker(ew.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ew.ctx.Done():
			return
		case <-ticker.C:
			ew.sweep(ew.ctx)
		}
	}
}

// sweep runs one pass and returns how many cases were flagged.
func (ew *EscalationWorker) sweep(ctx context.Context) int {
	cases, err := ew.source.ListStale(ctx, ew.config.After)

	ew.statsMutex.Lock()
	ew.stats.Sweeps++
	ew.stats.LastSweepAt = time.Now()
	if err != nil {
		ew.stats.Errors++
	}
	ew.statsMutex.Unlock()

	if err != nil {
		logrus.Errorf("Escalation sweep failed: %v", err)
		return 0
	}

	fresh := ew.markFlagged(cases)
	flagged := 0
	for _, c := range fresh {
		if !ew.claim(ctx, c.EmergencyID) {
			continue
		}
		ew.source.FlagStale(ctx, c)
		flagged++
	}

	if flagged > 0 {
		ew.statsMutex.Lock()
		ew.stats.CasesFlagged += int64(flagged)
		ew.statsMutex.Unlock()
	}
	return flagged
}

// markFlagged records the pending set and returns the cases not seen before.
// Ids that left pending are forgotten so the set stays bounded.
func (ew *EscalationWorker) markFlagged(cases []models.EmergencyCase) []models.EmergencyCase {
	ew.flaggedMu.Lock()
	defer ew.flaggedMu.Unlock()

	stillPending := make(map[string]struct{}, len(cases))
	var fresh []models.EmergencyCase
	for _, c := range cases {
		stillPending[c.EmergencyID] = struct{}{}
		if _, done := ew.flagged[c.EmergencyID]; done {
			continue
		}
		ew.flagged[c.EmergencyID] = struct{}{}
		fresh = append(fresh, c)
	}
	for id := range ew.flagged {
		if _, ok := stillPending[id]; !ok {
			delete(ew.flagged, id)
		}
	}
	return fresh
}

// claim takes the cross-instance lock for a case. Without Redis, or when
// Redis is unreachable, the local set is the only guard.
func (ew *EscalationWorker) claim(ctx context.Context, emergencyID string) bool {
	if ew.redis == nil {
		return true
	}
	ok, err := ew.redis.SetNX(ctx, escalationClaimPrefix+emergencyID, time.Now().Unix(), ew.config.ClaimTTL).Result()
	if err != nil {
		logrus.Warnf("Escalation claim for %s failed: %v", emergencyID, err)
		return true
	}
	return ok
}

func (ew *EscalationWorker) GetStats() EscalationWorkerStats {
	ew.statsMutex.RLock()
	defer ew.statsMutex.RUnlock()
	return ew.stats
}
