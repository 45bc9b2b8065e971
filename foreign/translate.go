package foreign

import (
	"errors"
	"strings"
	"unicode"

	"github.com/wasmglue/wasmglue/wire"
)

// Signal is a failure raised inside the guest, as reported by a Boundary.
type Signal struct {
	// Reason is "<kind-tag>: <message>".
	Reason  string
	Payload wire.Handle
}

func (s *Signal) Error() string { return "guest raised: " + s.Reason }

// AsSignal reports whether err carries a guest signal.
func AsSignal(err error) (*Signal, bool) {
	var sig *Signal
	if errors.As(err, &sig) {
		return sig, true
	}
	return nil, false
}

const tagDelimiter = ":"

// signalKinds is the complete set of recognized guest kind tags.
var signalKinds = map[string]error{
	"ValueError":                  ErrInvalidArgument,
	"TypeError":                   ErrInvalidArgument,
	"StopIteration":               ErrNoMoreElements,
	"IOError":                     ErrIO,
	"OSError":                     ErrIO,
	"ParseException":              ErrParse,
	"MissingArgumentException":    ErrParse,
	"MissingOptionException":      ErrParse,
	"UnrecognizedOptionException": ErrParse,
	"AmbiguousOptionException":    ErrParse,
	"AlreadySelectedException":    ErrParse,
	"IndexError":                  ErrOutOfRange,
	"KeyError":                    ErrOutOfRange,
}

// KindOf returns the error kind a tag maps to. Unknown tags map to
// ErrUnclassified.
func KindOf(tag string) error {
	if kind, ok := signalKinds[tag]; ok {
		return kind
	}
	return ErrUnclassified
}

// RecognizedTags lists every tag with a dedicated kind.
func RecognizedTags() []string {
	tags := make([]string, 0, len(signalKinds))
	for tag := range signalKinds {
		tags = append(tags, tag)
	}
	return tags
}

// ParseReason splits a signal reason at the first delimiter. The tag must be
// a single non-empty word; one space after the delimiter is dropped.
func ParseReason(reason string) (tag, message string, ok bool) {
	tag, message, found := strings.Cut(reason, tagDelimiter)
	if !found || tag == "" || strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
		return "", "", false
	}
	return tag, strings.TrimPrefix(message, " "), true
}

// Translate converts a guest signal into a host error that keeps sig as its
// cause. A reason that does not follow the "<tag>: <message>" form panics with
// *ProtocolError.
func Translate(sig *Signal) *Error {
	tag, message, ok := ParseReason(sig.Reason)
	if !ok {
		panic(&ProtocolError{Reason: sig.Reason, Detail: "expected \"<kind-tag>: <message>\""})
	}
	return &Error{
		Kind:    KindOf(tag),
		Tag:     tag,
		Message: message,
		Payload: sig.Payload,
		Cause:   sig,
	}
}
