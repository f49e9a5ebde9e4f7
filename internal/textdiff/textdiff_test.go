package textdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedAddedLine(t *testing.T) {
	out := Unified("a = A\n", "a = A\nb = B\n")
	assert.Contains(t, out, " a = A\n")
	assert.Contains(t, out, "+b = B\n")
}

func TestUnifiedRemovedLine(t *testing.T) {
	out := Unified("a = A\nb = B\n", "a = A\n")
	assert.Contains(t, out, "-b = B\n")
}

func TestUnifiedNoChange(t *testing.T) {
	out := Unified("a = A\n", "a = A\n")
	assert.Equal(t, " a = A\n", out)
}
