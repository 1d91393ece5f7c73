package component

// TTL is a frame-based time-to-live. The entity and its physics object are
// removed when it reaches zero.
type TTL struct {
	Frames int
}

var TTLComponent = NewComponent[TTL]()
