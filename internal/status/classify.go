package status

// Shape identifies which part of a raw record supplied its status.
type Shape int

const (
	// ShapeNone means no status was found anywhere.
	ShapeNone Shape = iota
	// ShapeRequest is a request record: its own status wins over its media's.
	ShapeRequest
	// ShapeRequestList is a details record carrying a requests list.
	ShapeRequestList
	// ShapeMediaInfo is a details record from a direct lookup.
	ShapeMediaInfo
	// ShapeMedia is a record with only a nested media status.
	ShapeMedia
	// ShapeBare is a record with a top-level status and nothing else.
	ShapeBare
)

func (s Shape) String() string {
	switch s {
	case ShapeRequest:
		return "request"
	case ShapeRequestList:
		return "requests"
	case ShapeMediaInfo:
		return "mediaInfo"
	case ShapeMedia:
		return "media"
	case ShapeBare:
		return "status"
	default:
		return "none"
	}
}

// Source is the classified status of a raw record.
type Source struct {
	Shape      Shape
	Code       Code
	HasCode    bool
	MediaURL   string
	ServiceURL string
}

// Classify finds the status code of a raw record. The checks run in a fixed
// priority order and the first shape that fits decides.
func Classify(r *Record) Source {
	if r == nil {
		return Source{}
	}

	switch {
	case r.Status != nil && r.Media != nil:
		return fromCode(ShapeRequest, r.Status, r.Media)
	case len(r.Requests) > 0:
		latest := r.Requests[0]
		return fromCode(ShapeRequestList, latest.Status, latest.Media)
	case r.MediaInfo != nil && r.MediaInfo.Status != nil:
		return fromCode(ShapeMediaInfo, r.MediaInfo.Status, r.MediaInfo)
	case r.Media != nil && r.Media.Status != nil:
		return fromCode(ShapeMedia, r.Media.Status, r.Media)
	case r.Status != nil:
		return fromCode(ShapeBare, r.Status, nil)
	}
	return Source{}
}

func fromCode(shape Shape, code *Code, m *Media) Source {
	src := Source{Shape: shape}
	if code != nil {
		src.Code = *code
		src.HasCode = true
	}
	if m != nil {
		src.MediaURL = m.MediaURL
		src.ServiceURL = m.ServiceURL
	}
	return src
}
