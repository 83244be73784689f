package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabels(t *testing.T) {
	m := parseLabels("SWEEP; COUNTERCLNT;;")
	assert.True(t, m[SWEEP])
	assert.True(t, m[COUNTERCLNT])
	assert.Equal(t, 2, len(m))
	assert.Equal(t, 0, len(parseLabels("")))
}

func TestWillBePrinted(t *testing.T) {
	SetDebug("RUNNER")
	defer SetDebug("")
	assert.True(t, WillBePrinted(RUNNER))
	assert.True(t, WillBePrinted(ALWAYS))
	assert.True(t, WillBePrinted(ERROR))
	assert.False(t, WillBePrinted(SWEEP))
}
