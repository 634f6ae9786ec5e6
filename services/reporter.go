package services

// Reporter receives progress messages from the core stages. *utils.Logger
// satisfies it; a nil Reporter is replaced by a no-op.
type Reporter interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Debug(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Info(string, ...any)  {}
func (nopReporter) Warn(string, ...any)  {}
func (nopReporter) Debug(string, ...any) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
