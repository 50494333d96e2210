package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorMatchesErrNotExist(t *testing.T) {
	err := fmt.Errorf("scan failed: %w", NewNotFoundError("/nope"))

	assert.True(t, stderrors.Is(err, fs.ErrNotExist))

	var nf *NotFoundError
	assert.True(t, stderrors.As(err, &nf))
	assert.Equal(t, "/nope", nf.Path)
	assert.Equal(t, "path does not exist: /nope", nf.Error())
}

func TestCommandError(t *testing.T) {
	err := NewCommandError(fmt.Errorf("violations found"), ExitViolations)

	var ce *CommandError
	assert.True(t, stderrors.As(error(err), &ce))
	assert.Equal(t, ExitViolations, ce.ExitCode)
	assert.Equal(t, "violations found", ce.Error())
}
