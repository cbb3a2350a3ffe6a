package mailer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultSimulatedDelay = 1500 * time.Millisecond

// Simulator is the demo-mode transport used when no mail credentials are
// configured. It waits a fixed artificial delay and reports success, so the
// storefront flows stay demonstrable without an EmailJS account.
type Simulator struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewSimulator constructs the demo transport. A non-positive delay falls back
// to the default.
func NewSimulator(delay time.Duration, logger *zap.Logger) *Simulator {
	if delay <= 0 {
		delay = defaultSimulatedDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{delay: delay, logger: logger}
}

// Name identifies the transport in logs.
func (s *Simulator) Name() string { return "simulator" }

// Send validates the message, waits the configured delay, and succeeds.
// Context cancellation interrupts the wait.
func (s *Simulator) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	s.logger.Info("simulated mail send",
		zap.String("template_id", msg.TemplateID),
		zap.Int("params", len(msg.Params)),
	)
	return nil
}
