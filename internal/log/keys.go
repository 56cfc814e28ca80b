package log

const (
	NamespaceKey = "aio"

	TaskIDKey   = NamespaceKey + ".task.id"
	TaskNameKey = NamespaceKey + ".task.name"

	DelayKey = NamespaceKey + ".delay_ms"
	// NowKey is the time at which a timer was armed
	NowKey = NamespaceKey + ".timer.now"
	// AtKey is the time at which a timer is scheduled to fire
	AtKey = NamespaceKey + ".timer.at"

	ReadyKey  = NamespaceKey + ".loop.ready"
	TimersKey = NamespaceKey + ".loop.timers"
)
