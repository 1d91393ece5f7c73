package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// DebrisTag marks pieces spawned by slicing.
type DebrisTag struct{}

var DebrisTagComponent = NewComponent[DebrisTag]()
