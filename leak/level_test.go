package leak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setLevelForTest switches the global level and restores the previous one
// when the test finishes.
func setLevelForTest(t *testing.T, l Level) {
	t.Helper()
	old := GetLevel()
	require.NoError(t, SetLevel(l))
	t.Cleanup(func() { _ = SetLevel(old) })
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"disabled", LevelDisabled},
		{"DISABLED", LevelDisabled},
		{"Simple", LevelSimple},
		{"advanced", LevelAdvanced},
		{"PARANOID", LevelParanoid},
		{" paranoid ", LevelParanoid},
		{"0", LevelDisabled},
		{"2", LevelAdvanced},
		{"3", LevelParanoid},
		{"", DefaultLevel},
		{"garbage", DefaultLevel},
		{"4", DefaultLevel},
		{"-1", DefaultLevel},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseLevel(c.in), "ParseLevel(%q)", c.in)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DISABLED", LevelDisabled.String())
	assert.Equal(t, "SIMPLE", LevelSimple.String())
	assert.Equal(t, "ADVANCED", LevelAdvanced.String())
	assert.Equal(t, "PARANOID", LevelParanoid.String())
	assert.Equal(t, "Level(9)", Level(9).String())
}

func TestSetLevel(t *testing.T) {
	setLevelForTest(t, LevelSimple)

	require.NoError(t, SetLevel(LevelAdvanced))
	assert.Equal(t, LevelAdvanced, GetLevel())
	assert.True(t, Enabled())

	require.NoError(t, SetLevel(LevelDisabled))
	assert.False(t, Enabled())

	err := SetLevel(Level(42))
	require.ErrorIs(t, err, ErrInvalidLevel)
	assert.Equal(t, LevelDisabled, GetLevel(), "failed SetLevel must not change the level")
}
