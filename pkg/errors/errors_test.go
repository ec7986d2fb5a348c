package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrSourceMissing, "source file /payload/foo does not exist")
	assert.Equal(t, "[SOURCE_MISSING] source file /payload/foo does not exist", err.Error())

	wrapped := Wrap(fmt.Errorf("disk full"), ErrCopyFailed, "failed to write /usr/bin/foo")
	assert.Equal(t, "[COPY_FAILED] failed to write /usr/bin/foo: disk full", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCopyFailed, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrCopyFailed, "nothing %d", 1))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrCopyFailed, "failed")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrDMConfig, "cannot write %s", "/etc/sddm.conf.d")
	assert.True(t, IsErrorCode(err, ErrDMConfig))
	assert.False(t, IsErrorCode(err, ErrCopyFailed))
	assert.False(t, IsErrorCode(fmt.Errorf("plain"), ErrDMConfig))

	// Code survives wrapping in plain errors
	outer := fmt.Errorf("context: %w", err)
	assert.True(t, IsErrorCode(outer, ErrDMConfig))
}

func TestIsSoft(t *testing.T) {
	assert.True(t, IsSoft(New(ErrDirNotEmpty, "dir not empty")))
	assert.True(t, IsSoft(New(ErrNoDisplayManager, "none found")))
	assert.False(t, IsSoft(New(ErrCopyFailed, "io error")))
	assert.False(t, IsSoft(fmt.Errorf("plain")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 10, ExitCode(New(ErrSourceMissing, "missing")))
	assert.Equal(t, 21, ExitCode(New(ErrDMConfig, "bad")))
	assert.Equal(t, 130, ExitCode(New(ErrInterrupted, "signal")))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrPermission, "chmod failed").WithDetail("path", "/usr/bin/foo")
	assert.Equal(t, "/usr/bin/foo", err.Details["path"])
}
