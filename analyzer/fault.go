package analyzer

import "fmt"

// FaultKind names a recoverable analysis defect.
type FaultKind int

const (
	FaultInvalidCard FaultKind = iota
	FaultInsufficientBoard
	FaultRangeCollapsed
	FaultFrequencyNormalization
	FaultInputShapeMismatch
)

var faultNames = [...]string{
	"invalid_card",
	"insufficient_board",
	"range_collapsed",
	"frequency_normalization_failed",
	"input_shape_mismatch",
}

func (k FaultKind) String() string {
	if k < 0 || int(k) >= len(faultNames) {
		return "unknown"
	}
	return faultNames[k]
}

// Fault is an error value carried inside analysis output. The pipeline does
// not abort on bad data; it records the fault, applies the named fallback,
// and keeps going.
type Fault struct {
	Kind        FaultKind
	Message     string
	Recoverable bool
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func faultf(kind FaultKind, format string, args ...any) Fault {
	return Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Recoverable: true}
}
