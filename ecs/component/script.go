package component

// Script drives an entity's commands from a tengo script instead of the
// keyboard.
type Script struct {
	Path string
	// Done is set once the script reports it has nothing left to do.
	Done bool
}

var ScriptComponent = NewComponent[Script]()
