package domain

type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaAudio
)

func (k MediaKind) String() string {
	switch k {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// MediaKinds lists every relayed media kind.
var MediaKinds = []MediaKind{MediaVideo, MediaAudio}
