package domain

// Snapshot is the full backend content as observed at one point in time.
// Version is an opaque token (e.g. an HTTP ETag) and may be empty when the
// backend cannot report one.
type Snapshot struct {
	Content string
	Version string
}

// ContentState tells an empty backend apart from one that could not be read.
type ContentState string

const (
	ContentPresent ContentState = "present"
	ContentEmpty   ContentState = "empty"
	ContentUnknown ContentState = "unknown"
)

// BackendView is what the controller displays for the backend resource.
type BackendView struct {
	Content string
	State   ContentState
}

// NewBackendView classifies content that was read successfully.
func NewBackendView(content string) BackendView {
	if content == "" {
		return BackendView{State: ContentEmpty}
	}
	return BackendView{Content: content, State: ContentPresent}
}

// UnknownView is the view used when the backend read failed.
func UnknownView() BackendView {
	return BackendView{State: ContentUnknown}
}
