package component

// ReloadRequest is a short-lived entity carrying prefab files that changed on
// disk. The reload system consumes and destroys it.
type ReloadRequest struct {
	Paths []string
}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
