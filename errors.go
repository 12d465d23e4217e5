package pcmstream

// Stage names the part of the pipeline an error came from.
type Stage int

const (
	StageGeneration Stage = iota
	StageStorage
	StagePlayback
)

func (s Stage) String() string {
	switch s {
	case StageGeneration:
		return "generation"
	case StageStorage:
		return "storage"
	case StagePlayback:
		return "playback"
	}
	return "unknown"
}

// StageError is a fatal pipeline error tagged with the stage that failed. Nothing in the
// pipeline retries: a missed sample cannot be played late, so every StageError ends the stream.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

// Cause returns the underlying error, for github.com/pkg/errors.Cause.
func (e *StageError) Cause() error { return e.Err }

func (e *StageError) Unwrap() error { return e.Err }

func stageError(s Stage, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StageError); ok {
		return se
	}
	return &StageError{Stage: s, Err: err}
}
