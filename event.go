package indexnow

// ChangeKind is the kind of content change reported by the event source.
type ChangeKind string

// ChangeKind constants.
const (
	ChangePublished   ChangeKind = "published"
	ChangeUpdated     ChangeKind = "updated"
	ChangeUnpublished ChangeKind = "unpublished"
	ChangeTrashed     ChangeKind = "trashed"
	ChangeDeleted     ChangeKind = "deleted"
)

// Resource statuses recognized by change filtering.
const (
	StatusPublish = "publish"
	StatusPrivate = "private"
)

// ChangeEvent reports that a resource on the site changed.
type ChangeEvent struct {
	Kind ChangeKind `json:"kind"`

	// URL is the public URL of the resource.
	URL string `json:"url"`

	// Type is the resource type, e.g. "post" or "page".
	Type string `json:"type"`

	// Status and PreviousStatus are the resource status after and before
	// the change. PreviousStatus may be empty.
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
}

// Validate returns an error if the event is missing required fields.
func (e *ChangeEvent) Validate() error {
	switch e.Kind {
	case ChangePublished, ChangeUpdated, ChangeUnpublished, ChangeTrashed, ChangeDeleted:
	default:
		return Errorf(EINVALID, "unknown change kind %q", e.Kind)
	}
	if e.URL == "" {
		return Errorf(EINVALID, "change URL required")
	}
	if e.Type == "" {
		return Errorf(EINVALID, "change resource type required")
	}
	return nil
}

// Removal reports whether the event takes the resource off the site.
func (e *ChangeEvent) Removal() bool {
	return e.Kind == ChangeTrashed || e.Kind == ChangeDeleted
}
