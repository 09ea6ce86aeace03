package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("plain version", func(t *testing.T) {
		t.Parallel()
		v, err := Parse("2.1.0")
		require.NoError(t, err)
		assert.Equal(t, "2.1.0", v.String())
		assert.Equal(t, 0, v.Revision())
	})

	t.Run("version with revision", func(t *testing.T) {
		t.Parallel()
		v, err := Parse("2.1.0-3")
		require.NoError(t, err)
		assert.Equal(t, "2.1.0-3", v.String())
		assert.Equal(t, 3, v.Revision())
	})

	t.Run("short version coerced", func(t *testing.T) {
		t.Parallel()
		v, err := Parse("1.0")
		require.NoError(t, err)
		assert.Equal(t, "1.0", v.String())
	})

	t.Run("empty string rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Parse("")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Parse("not a version")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "2.0", -1},
		{"2.0", "1.0", 1},
		{"1.0", "1.0", 0},
		{"1.0-1", "1.0-2", -1},
		{"1.0-2", "1.0-1", 1},
		{"1.0-1", "1.0-1", 0},
		{"1.9", "1.10", -1},
		{"2.0.1", "2.0", 1},
	}

	for _, tc := range cases {
		got := MustParse(tc.a).Compare(MustParse(tc.b))
		assert.Equal(t, tc.want, got, "%s vs %s", tc.a, tc.b)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	v := MustParse("2.1.0-3")
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"2.1.0-3"`, string(data))

	var back Version
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, v.Compare(back))
	assert.Equal(t, v.String(), back.String())
}

func TestConstraint(t *testing.T) {
	t.Parallel()

	t.Run("range check", func(t *testing.T) {
		t.Parallel()
		c, err := ParseConstraint(">= 5.1, < 5.4")
		require.NoError(t, err)
		assert.True(t, c.Check(MustParse("5.1")))
		assert.True(t, c.Check(MustParse("5.3")))
		assert.False(t, c.Check(MustParse("5.4")))
		assert.False(t, c.Check(MustParse("5.0")))
	})

	t.Run("lower bound excludes older target", func(t *testing.T) {
		t.Parallel()
		c, err := ParseConstraint(">= 5.2")
		require.NoError(t, err)
		assert.False(t, c.Check(MustParse("5.1")))
	})

	t.Run("revision does not affect matching", func(t *testing.T) {
		t.Parallel()
		c, err := ParseConstraint("= 1.0")
		require.NoError(t, err)
		assert.True(t, c.Check(MustParse("1.0-4")))
	})

	t.Run("bad expression rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConstraint(">>>")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}
