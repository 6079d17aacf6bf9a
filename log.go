package esphttp

import "go.uber.org/zap"

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger attaches a structured logger. Phase advances made by GetStatus
// are logged at Debug (the jumps made by Request and ChangeAccessPoint are
// not); each recorded failure is logged at Warn with the cause.
// By default a Driver logs nothing.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Driver) { d.log = l }
}

func (d *Driver) logTransition(from, to Phase) {
	if d.log == nil {
		return
	}
	d.log.Debugw("phase transition", "from", from, "to", to)
}

func (d *Driver) logFailure(op string, err error) {
	if d.log == nil {
		return
	}
	d.log.Warnw("transaction failed", "op", op, "err", err)
}
