package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := Wrap(FileNotFound, "cannot read source", fs.ErrNotExist).WithPath("src/a.ts")

	assert.Equal(t, "[FILE_NOT_FOUND] cannot read source (src/a.ts): file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCodeThroughWrapping(t *testing.T) {
	inner := New(UnknownRule, "no rule named nope")
	outer := fmt.Errorf("failed to run rule: %w", inner)

	assert.Equal(t, UnknownRule, Code(outer))
	assert.True(t, IsCode(outer, UnknownRule))
	assert.False(t, IsCode(outer, DuplicateRule))
	assert.Equal(t, ErrorCode(""), Code(stderrors.New("plain")))
}
