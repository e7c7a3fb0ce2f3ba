// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	err := New(KindConfig, "title must not be empty")
	if err.Error() != "title must not be empty" {
		t.Errorf("expected 'title must not be empty', got '%s'", err.Error())
	}

	wrapped := Wrap(err, KindInternal, "failed to load config")
	if wrapped.Error() != "failed to load config: title must not be empty" {
		t.Errorf("unexpected message '%s'", wrapped.Error())
	}

	if Wrap(nil, KindOutput, "nothing") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestGetKind(t *testing.T) {
	err := New(KindInput, "no input files")
	if GetKind(err) != KindInput {
		t.Errorf("expected KindInput, got %v", GetKind(err))
	}

	wrapped := Wrap(err, KindOutput, "failed")
	if GetKind(wrapped) != KindOutput {
		t.Errorf("expected KindOutput, got %v", GetKind(wrapped))
	}

	stdWrapped := fmt.Errorf("run: %w", err)
	if GetKind(stdWrapped) != KindInput {
		t.Errorf("expected KindInput through fmt wrapping, got %v", GetKind(stdWrapped))
	}

	if GetKind(errors.New("std error")) != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", GetKind(errors.New("std error")))
	}
}

func TestAttributes(t *testing.T) {
	err := New(KindOutput, "output directory not writable")
	err = Attr(err, "dir", "docs")

	wrapped := Wrap(err, KindInternal, "failed")
	wrapped = Attr(wrapped, "stage", "write")

	attrs := GetAttributes(wrapped)
	if attrs["dir"] != "docs" || attrs["stage"] != "write" {
		t.Errorf("missing attributes: %v", attrs)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{New(KindContent, "no blocks"), 1},
		{New(KindInput, "no files"), 1},
		{New(KindConfig, "bad syntax value"), 2},
		{New(KindOutput, "read-only"), 3},
		{New(KindDrift, "docs out of date"), 3},
		{errors.New("plain"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}


