package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePackageVersion_SimpleTriple(t *testing.T) {
	assert.Equal(t, PackageVersion{Major: 1, Minor: 2, Patch: 3}, ParsePackageVersion("1.2.3"))
}

func TestParsePackageVersion_MissingFieldsDefaultToZero(t *testing.T) {
	assert.Equal(t, PackageVersion{Major: 5}, ParsePackageVersion("5"))
	assert.Equal(t, PackageVersion{Major: 5, Minor: 1}, ParsePackageVersion("5.1"))
}

func TestParsePackageVersion_LongestLeadingDecimalPrefix(t *testing.T) {
	assert.Equal(t, PackageVersion{Major: 2, Minor: 0, Patch: 0}, ParsePackageVersion("2rc1.foo.bar"))
}

func TestParsePackageVersion_EmptyOrNonNumericFieldIsZero(t *testing.T) {
	assert.Equal(t, PackageVersion{}, ParsePackageVersion(""))
	assert.Equal(t, PackageVersion{}, ParsePackageVersion("alpha"))
	assert.Equal(t, PackageVersion{Major: 1}, ParsePackageVersion("1..extra"))
}

func TestCompare_StrictLexicographic(t *testing.T) {
	assert.True(t, PackageVersion{1, 0, 0}.Less(PackageVersion{1, 0, 1}))
	assert.True(t, PackageVersion{1, 0, 0}.Less(PackageVersion{1, 1, 0}))
	assert.True(t, PackageVersion{1, 9, 9}.Less(PackageVersion{2, 0, 0}))
	assert.False(t, PackageVersion{2, 0, 0}.Less(PackageVersion{1, 9, 9}))
	assert.True(t, PackageVersion{1, 2, 3}.Equal(PackageVersion{1, 2, 3}))
}

func TestParsePackageVersion_IsIdempotentThroughFormat(t *testing.T) {
	versions := []PackageVersion{
		{0, 0, 0},
		{1, 2, 3},
		{4294967295, 0, 7},
	}
	for _, v := range versions {
		assert.Equal(t, v, ParsePackageVersion(v.String()))
	}
}
