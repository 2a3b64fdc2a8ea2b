// Package scheduler provides a local fallback trigger for the daily due
// generation run. Deployments behind a managed cron (App Engine style) hit
// the tasks endpoint instead and leave this trigger disabled.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GenerationRunner runs the daily recurring due generation
type GenerationRunner interface {
	GenerateDaily(ctx context.Context, now time.Time) error
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// RunHour and RunMinute give the UTC time of day to fire. Generation
	// reasons about UTC calendar days, so the trigger does too.
	RunHour   int
	RunMinute int

	// CheckInterval is how often to check whether it is time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns the default trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		RunHour:       6,
		RunMinute:     0,
		CheckInterval: time.Minute,
	}
}

// CronTrigger fires the generation run once per day at the configured time.
// The run itself is idempotent, so an extra trigger (restart near the run
// time, clock weirdness) is harmless.
type CronTrigger struct {
	config CronTriggerConfig
	runner GenerationRunner
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string

	nowFunc func() time.Time
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, runner GenerationRunner, logger *zap.Logger) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &CronTrigger{
		config:  config,
		runner:  runner,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Start starts the trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("generation cron trigger started",
		zap.Int("run_hour", c.config.RunHour),
		zap.Int("run_minute", c.config.RunMinute),
	)
	return nil
}

// Stop stops the trigger loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("generation cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires the run once per UTC calendar day at or after the
// configured time
func (c *CronTrigger) checkAndTrigger(ctx context.Context) {
	now := c.nowFunc().UTC()
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	alreadyRan := c.lastRunDate == currentDate
	c.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() < c.config.RunHour ||
		(now.Hour() == c.config.RunHour && now.Minute() < c.config.RunMinute) {
		return
	}

	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	if err := c.runner.GenerateDaily(ctx, now); err != nil {
		c.logger.Error("scheduled generation run failed",
			zap.String("date", currentDate),
			zap.Error(err),
		)
		// Leave lastRunDate set: the run marker and per-due dedup decide
		// what a retry via the tasks endpoint may still create.
	}
}
