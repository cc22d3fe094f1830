package transcript

// Result is the outcome of one request: exactly one of *Success or *Failure.
// The interface is sealed; no other package can add a variant.
type Result interface {
	isResult()
}

// Success carries the video metadata and its plain-text transcript.
type Success struct {
	VideoID           string
	Title             string
	Description       string
	Author            string
	LengthSeconds     int
	Content           string
	Language          string // code of the track the content came from
	Origin            Origin
	Stage             SelectionStage
	AvailableCaptions []string
	Truncated         bool
}

// Failure carries the failure kind and a human-readable reason.
type Failure struct {
	Kind   Kind
	Reason string
}

func (*Success) isResult() {}
func (*Failure) isResult() {}

// Error lets a Failure travel through error-returning plumbing such as engine.TrackOperation.
func (f *Failure) Error() string { return string(f.Kind) + ": " + f.Reason }

func failureFrom(err error) *Failure {
	return &Failure{Kind: KindOf(err), Reason: err.Error()}
}
