package predict

// Kind classifies the result of a prediction.
type Kind int

const (
	// InsufficientData means the buffer is not full or the predictor is not ready.
	InsufficientData Kind = iota
	// AlreadyAtTarget means the latest weight is at or above the target.
	AlreadyAtTarget
	// NonPositiveRate means the weight is not increasing, so there is nothing to extrapolate.
	NonPositiveRate
	// Estimate means Value holds the time remaining until the target.
	Estimate
)

var kindNames = map[Kind]string{
	InsufficientData: "insufficient_data",
	AlreadyAtTarget:  "already_at_target",
	NonPositiveRate:  "non_positive_rate",
	Estimate:         "estimate",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the tagged result of PredictTime.
type Outcome struct {
	Kind  Kind
	Value float64 // Time remaining, in the reading timestamp unit. Only meaningful for Estimate.
}

// Remaining returns the estimated time remaining.
// ok is true for Estimate and AlreadyAtTarget (zero remaining).
func (o Outcome) Remaining() (float64, bool) {
	switch o.Kind {
	case Estimate:
		return o.Value, true
	case AlreadyAtTarget:
		return 0, true
	default:
		return 0, false
	}
}

// Sentinel encodes the outcome as a single number: -1 when no estimate is
// possible, 0 when the target is reached, the estimate otherwise.
// Used for line-oriented status output.
func (o Outcome) Sentinel() float64 {
	switch o.Kind {
	case Estimate:
		return o.Value
	case AlreadyAtTarget:
		return 0
	default:
		return -1
	}
}
