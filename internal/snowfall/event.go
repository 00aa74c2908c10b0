package snowfall

type EventKind int

const (
	EventBurstStarted EventKind = iota + 1
	EventReshuffled
	EventBurstFinished
	EventBurstCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventBurstStarted:
		return "burst_started"
	case EventReshuffled:
		return "reshuffled"
	case EventBurstFinished:
		return "burst_finished"
	case EventBurstCancelled:
		return "burst_cancelled"
	default:
		return "unknown"
	}
}

// Event reports simulator activity. Burst is zero for a Reshuffle that was not
// part of a burst.
type Event struct {
	Kind      EventKind
	Burst     uint64
	Fired     int
	Relocated int
}

type Observer interface {
	OnSnowfallEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnSnowfallEvent(ev Event) {
	f(ev)
}
