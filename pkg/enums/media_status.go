package enums

// MediaStatus is the lifecycle state of an uploaded object:
// pending -> uploaded -> deleted, or pending -> deleted when an upload is
// abandoned.
type MediaStatus string

const (
	MediaStatusPending  MediaStatus = "pending"
	MediaStatusUploaded MediaStatus = "uploaded"
	MediaStatusDeleted  MediaStatus = "deleted"
)

func (m MediaStatus) String() string {
	return string(m)
}

func (m MediaStatus) IsValid() bool {
	switch m {
	case MediaStatusPending, MediaStatusUploaded, MediaStatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a forward move from m.
func (m MediaStatus) CanTransitionTo(next MediaStatus) bool {
	switch m {
	case MediaStatusPending:
		return next == MediaStatusUploaded || next == MediaStatusDeleted
	case MediaStatusUploaded:
		return next == MediaStatusDeleted
	}
	return false
}
