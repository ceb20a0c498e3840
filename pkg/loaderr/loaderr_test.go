package loaderr

import (
	"errors"
	"testing"
)

func TestIoErrorUnwraps(t *testing.T) {
	cause := errors.New("disk exploded")
	err := &IoError{Path: "a.obj", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestParseErrorIncludesLine(t *testing.T) {
	err := &ParseError{Path: "a.obj", Line: 42, Reason: "bad float"}
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestPoolClosedError(t *testing.T) {
	var err error = &PoolClosed{}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}
