package atomnet

import (
	"errors"
	"fmt"
)

// Kind classifies the error taxonomy from the ingest/mutation pipeline.
// Every IngestError raised in this module (not just by atomnet itself)
// carries one of these.
type Kind int

const (
	// KindSchema is a malformed document: missing attribute, wrong root
	// element, wrong instance literal.
	KindSchema Kind = iota
	// KindUnknownEntity is a reference to an atom block, port, pin,
	// interconnect, mode, or pb-type that does not exist.
	KindUnknownEntity
	// KindShapeMismatch is a wrong pin count, an out-of-range slot, or
	// duplicate slot occupancy.
	KindShapeMismatch
	// KindConsistency is a global/non-global mix, an unmarked constant
	// generator, or an atom left unbound after ingest.
	KindConsistency
	// KindDuplicateName is an attempt to add an already-live name.
	KindDuplicateName
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SchemaError"
	case KindUnknownEntity:
		return "UnknownEntity"
	case KindShapeMismatch:
		return "ShapeMismatch"
	case KindConsistency:
		return "ConsistencyError"
	case KindDuplicateName:
		return "DuplicateName"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IngestError is the single error type this module and its sibling
// packages (packednet, clusternet, constgen, transform) raise for any
// hard failure. pinexpr returns plain wrapped errors (which packednet
// wraps in an IngestError), and blif returns the writer's error as-is.
// Source is the owning package's short name
// ("atomnet", "packednet", ...), following the conventional
// "pkgname: message" prefix but formalized into a typed Kind so
// callers can discriminate with errors.As instead of string matching.
type IngestError struct {
	Source  string
	Kind    Kind
	Context string
	Cause   error
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Source, e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Context)
}

func (e *IngestError) Unwrap() error { return e.Cause }

// newErr builds an *IngestError; cause may be nil.
func newErr(source string, kind Kind, context string, cause error) *IngestError {
	return &IngestError{Source: source, Kind: kind, Context: context, Cause: cause}
}

// Sentinels usable with errors.Is against a Kind-tagged error's Kind
// field via IsKind, so callers can test for these with errors.Is
// rather than a type switch.
var (
	ErrDuplicateName = errors.New("name is already live")
	ErrUnknownEntity = errors.New("entity does not exist")
)

// IsKind reports whether err is an *IngestError of the given Kind.
func IsKind(err error, kind Kind) bool {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
