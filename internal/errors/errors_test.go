package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := SourceNotFound("books.json", fs.ErrNotExist)

	assert.True(t, Is(err, ErrSourceNotFound))
	assert.False(t, Is(err, ErrMalformedSource))
	assert.True(t, Is(err, fs.ErrNotExist), "cause should stay reachable")
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("clean: %w", MalformedSource("in.json", New("unexpected EOF")))

	assert.True(t, Is(err, ErrMalformedSource))
	assert.Equal(t, CodeMalformedSource, CodeOf(err))
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestCodeOf_Plain(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(New("boom")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, CodeSourceNotFound.ExitCode())
	assert.Equal(t, 3, CodeMalformedSource.ExitCode())
	assert.Equal(t, 3, CodeUnsupportedFormat.ExitCode())
	assert.Equal(t, 4, CodeInvalidConfig.ExitCode())
	assert.Equal(t, 1, CodeInternal.ExitCode())
}
