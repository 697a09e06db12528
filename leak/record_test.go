package leak

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringerHint struct{ s string }

func (h stringerHint) HintString() string { return h.s }

type panickyHint struct{}

func (panickyHint) HintString() string { panic("broken hint") }

func TestRecordPositions(t *testing.T) {
	require.Equal(t, -1, bottom.pos)
	require.Nil(t, bottom.next)

	r1 := newRecord(bottom, nil, false)
	r2 := newRecord(r1, nil, false)
	r3 := newRecord(r2, nil, false)

	assert.Equal(t, 0, r1.pos)
	assert.Equal(t, 1, r2.pos)
	assert.Equal(t, 2, r3.pos)
	for _, r := range []*record{r1, r2, r3} {
		assert.Equal(t, r.pos, r.next.pos+1)
	}
}

func TestResolveHint(t *testing.T) {
	s, ok := resolveHint("decode")
	require.True(t, ok)
	assert.Equal(t, "decode", s)

	s, ok = resolveHint(42)
	require.True(t, ok)
	assert.Equal(t, "42", s)

	s, ok = resolveHint(stringerHint{s: "custom rendering"})
	require.True(t, ok)
	assert.Equal(t, "custom rendering", s)

	// A panicking hint renderer must not corrupt the record.
	s, ok = resolveHint(panickyHint{})
	assert.False(t, ok)
	assert.Empty(t, s)
}

func TestRecordRenderFormat(t *testing.T) {
	r := newRecord(bottom, "decode header", true)
	out := r.render()

	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out, "\tHint: decode header\n"), "hint line first: %q", out)
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "\t"), "every line tab indented: %q", line)
	}
}

func TestRecordCapturesStackEagerly(t *testing.T) {
	r := newRecord(bottom, nil, false)
	assert.NotEmpty(t, r.pcs, "frames must be captured at construction")
}
