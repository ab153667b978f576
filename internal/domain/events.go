package domain

// Kafka topics the domain events are bridged onto.
const (
	TopicImageUploaded = "images.uploaded"
	TopicImageDeleted  = "images.deleted"
)

// Event is a same-process notification of a state change. Events are
// dispatched synchronously inside the triggering request; a bridging
// subscriber re-publishes them onto the external topic named by Topic.
type Event interface {
	Topic() string
}

// OriginalImageUploaded is emitted after the original binary and its
// metadata record are both persisted.
type OriginalImageUploaded struct {
	ImageID    string `json:"image_id"`
	ImageGroup string `json:"image_group,omitempty"`
}

func (OriginalImageUploaded) Topic() string { return TopicImageUploaded }

// ImageMetadataDeleted is emitted right after the metadata record is
// removed; from that point the image is unsearchable and the binaries
// are cleaned up asynchronously.
type ImageMetadataDeleted struct {
	ImageShortInfo
}

func (ImageMetadataDeleted) Topic() string { return TopicImageDeleted }
