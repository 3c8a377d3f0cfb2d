package bufpool

// Reporter observes pool lifecycle and usage events. Implementations are
// invoked synchronously on the mutating goroutine and must be safe for
// concurrent use; expensive work should be handed off.
//
// The default is [NopReporter]; wire a real implementation to feed a
// tracing or metrics subsystem without coupling this package to one.
type Reporter interface {
	// ManagerCreated is emitted once, when a Manager is constructed.
	ManagerCreated(config Config)

	// UsageReport is emitted after each block-release batch with the
	// small tier's current in-use byte count.
	UsageReport(smallPoolInUseBytes int64)
}

// NopReporter is a Reporter that discards all events.
type NopReporter struct{}

func (NopReporter) ManagerCreated(Config) {}
func (NopReporter) UsageReport(int64)     {}

var _ Reporter = NopReporter{}
