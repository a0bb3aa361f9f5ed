package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/tracksort/pkg/version"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()

	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.LessOrEqual(t, len(info.Commit), 12)
	assert.Contains(t, info.String(), "tracksort "+info.Version)
}
