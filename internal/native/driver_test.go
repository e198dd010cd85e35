package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aottr/buildprep/internal/platform"
)

func TestExpandKeepsWordBoundaries(t *testing.T) {
	apt, err := ForPrototype(platform.PrototypeDebian)
	require.NoError(t, err)
	got := apt.AddRepo.Expand(map[string]string{
		"url":          "http://example.com/it's here/",
		"component":    "main; rm -rf /",
		"registration": "/etc/apt/sources.list.d/llvm.list",
	})
	// The shell body is fixed; every value is its own argv word.
	assert.Equal(t, []string{"sudo", "sh", "-c", `echo "deb $1 $2" > "$3"`, "sh",
		"http://example.com/it's here/", "main; rm -rf /", "/etc/apt/sources.list.d/llvm.list"}, got)
}

func TestExpandEmpty(t *testing.T) {
	assert.Nil(t, Template(nil).Expand(map[string]string{"a": "b"}))
}

func TestForPrototype(t *testing.T) {
	for _, p := range platform.Prototypes() {
		m, err := ForPrototype(p)
		require.NoError(t, err, p)
		assert.NotEmpty(t, m.Install, p)
	}
	_, err := ForPrototype(platform.PrototypeUnknown)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	def, _ := ForPrototype(platform.PrototypeDebian)
	got := Manager{Install: Template{"apt", "install"}}.Merge(def)
	assert.Equal(t, Template{"apt", "install"}, got.Install)
	assert.Equal(t, def.Update, got.Update)
	assert.Equal(t, "apt", got.Name)
}
