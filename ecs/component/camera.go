package component

// Camera follows the player in the top-down debug view.
type Camera struct {
	X          float64
	Y          float64
	Zoom       float64
	Smoothness float64
}

var CameraComponent = NewComponent[Camera]()
