package pathescape

import (
	"testing"

	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/stretchr/testify/assert"
)

func TestCheck_AcceptsOrdinaryRelativePaths(t *testing.T) {
	assert.NoError(t, Check(""))
	assert.NoError(t, Check("bin"))
	assert.NoError(t, Check("sub/dir/file.bin"))
}

func TestCheck_RejectsAbsolutePaths(t *testing.T) {
	err := Check("/etc/passwd")
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidPath))
}

func TestCheck_RejectsParentEscape(t *testing.T) {
	err := Check("../outside")
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidPath))

	err = Check("sub/../../outside")
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidPath))
}

func TestCheck_AllowsInternalDotDotThatStaysInside(t *testing.T) {
	assert.NoError(t, Check("sub/../other"))
}
