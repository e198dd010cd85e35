package gnargs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSerializeScalarsSorted(t *testing.T) {
	got := Serialize(Map{
		"target_os": String("linux"),
		"is_debug":  Bool(true),
		"jobs":      Int(8),
	})
	assert.Equal(t, `is_debug = true jobs = 8 target_os = "linux"`, got)
}

func TestSerializeFlattensNestedMaps(t *testing.T) {
	got := Serialize(Map{
		"zlib": Nested(Map{
			"include_dirs": Strings("/usr/include"),
			"libs":         Strings("z"),
			"extra":        Nested(Map{"on": Bool(false)}),
		}),
	})
	assert.Equal(t, `zlib_extra_on = false zlib_include_dirs = ["/usr/include"] zlib_libs = ["z"]`, got)
}

func TestSerializeEscapes(t *testing.T) {
	got := Serialize(Map{"s": String(`a "b" $c \d`)})
	assert.Equal(t, `s = "a \"b\" \$c \\d"`, got)
}

func TestSerializeNestedLists(t *testing.T) {
	got := Serialize(Map{"l": List(Int(1), List(String("x")), Strings())})
	assert.Equal(t, `l = [1, ["x"], []]`, got)
}

func TestListRejectsMaps(t *testing.T) {
	assert.Panics(t, func() { List(Nested(Map{})) })
	assert.Panics(t, func() { List(Value{}) })
}

func TestFromAnyYAML(t *testing.T) {
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(`
use_goma: false
jobs: 4
defines: [A, B]
sanitizer:
  asan: true
`), &raw))
	m, err := MapFromAny(raw)
	require.NoError(t, err)
	assert.Equal(t, `defines = ["A", "B"] jobs = 4 sanitizer_asan = true use_goma = false`, Serialize(m))
}

func TestFromAnyRejects(t *testing.T) {
	for name, in := range map[string]any{
		"float":        1.5,
		"null":         nil,
		"struct":       struct{}{},
		"map-in-list":  []any{map[string]any{"a": 1}},
		"nested-float": map[string]any{"a": []any{2.5}},
		"huge":         1e300,
		"two-pow-63":   9223372036854775808.0,
		"below-min":    -1e19,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromAny(in)
			assert.Error(t, err)
		})
	}
}

func TestFromAnyIntegralFloat(t *testing.T) {
	v, err := FromAny(-9223372036854775808.0)
	require.NoError(t, err)
	assert.Equal(t, Int(math.MinInt64), v)
}

func TestSerializeFlatKeyBeatsNested(t *testing.T) {
	m := Map{
		"zlib":              Nested(Map{"include_dirs": Strings("/usr/include")}),
		"zlib_include_dirs": Strings("/opt/zlib/include"),
	}
	want := `zlib_include_dirs = ["/opt/zlib/include"]`
	for i := 0; i < 100; i++ {
		require.Equal(t, want, Serialize(m))
	}
}

func TestSerializeEqualDepthCollision(t *testing.T) {
	m := Map{
		"a":   Nested(Map{"b_c": Int(1)}),
		"a_b": Nested(Map{"c": Int(2)}),
	}
	for i := 0; i < 100; i++ {
		require.Equal(t, `a_b_c = 1`, Serialize(m))
	}
}

func TestMerge(t *testing.T) {
	got := Merge(Map{"a": Int(1), "b": Int(2)}, Map{"b": Int(3)})
	assert.Equal(t, `a = 1 b = 3`, Serialize(got))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "libcxx", Identifier("libc++"))
	assert.Equal(t, "sdl2", Identifier("SDL2"))
	assert.Equal(t, "gtkx_3_0", Identifier("gtk+-3.0"))
	assert.Equal(t, "_2geom", Identifier("2geom"))
}
