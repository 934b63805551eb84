package loader

import "time"

// ResponseKind selects how a transfer's body is handed to the file type.
type ResponseKind int

const (
	// The body is UTF-8 text.
	ResponseText ResponseKind = iota
	// The body is an opaque byte stream.
	ResponseBinary
)

// RequestSettings is the per-transfer knob set, merged over the loader's
// defaults. Zero values inherit.
type RequestSettings struct {
	ResponseKind ResponseKind
	Timeout      time.Duration
	Headers      map[string]string
	User         string
	Password     string
	UserAgent    string
}

// merged overlays s on top of def. Headers are unioned with s winning on
// conflicts. ResponseKind always comes from s since the file type sets it.
func (s RequestSettings) merged(def RequestSettings) RequestSettings {
	out := s
	if out.Timeout == 0 {
		out.Timeout = def.Timeout
	}
	if out.UserAgent == "" {
		out.UserAgent = def.UserAgent
	}
	if out.User == "" {
		out.User = def.User
		out.Password = def.Password
	}
	if len(def.Headers) > 0 {
		merged := make(map[string]string, len(def.Headers)+len(out.Headers))
		for k, v := range def.Headers {
			merged[k] = v
		}
		for k, v := range out.Headers {
			merged[k] = v
		}
		out.Headers = merged
	}
	return out
}
