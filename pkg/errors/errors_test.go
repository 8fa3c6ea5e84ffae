package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMesh, "loop %d is open", 2)

	if err.Code != ErrCodeInvalidMesh {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMesh)
	}

	if err.Message != "loop 2 is open" {
		t.Errorf("Message = %v, want %v", err.Message, "loop 2 is open")
	}

	expected := "INVALID_MESH: loop 2 is open"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStorage, cause, "save mesh")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "STORAGE_ERROR: save mesh: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeTimeout, false},
		{"outer code wins", Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStorage, true},
		{"fmt wrapped", fmtWrap(New(ErrCodeMeshNotFound, "x")), ErrCodeMeshNotFound, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidMesh, "bad loop")); got != "bad loop" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad loop")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}

func TestCategories(t *testing.T) {
	if !IsInvalid(New(ErrCodeInvalidPredicate, "x")) {
		t.Error("IsInvalid(INVALID_PREDICATE) = false, want true")
	}
	if IsInvalid(New(ErrCodeStorage, "x")) {
		t.Error("IsInvalid(STORAGE_ERROR) = true, want false")
	}
	if !IsNotFound(Wrap(ErrCodeMeshNotFound, errors.New("no documents"), "load")) {
		t.Error("IsNotFound(MESH_NOT_FOUND) = false, want true")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound(plain) = true, want false")
	}
}

func fmtWrap(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "context: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }
