package emojihash_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AztecProtocol/gregoswap-sub001/pkg/emojihash"
)

func TestRender(t *testing.T) {
	t.Parallel()

	code := emojihash.Render([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	require.Equal(t, "🐶🐱🐭🐹🐰🦊🐻🐼", code)
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	fingerprint := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22, 0x33}
	require.Equal(t, emojihash.Render(fingerprint), emojihash.Render(fingerprint))
}

func TestRenderTruncatesLongFingerprint(t *testing.T) {
	t.Parallel()

	long := make([]byte, 32)
	code := emojihash.Render(long)
	require.Equal(t, emojihash.CodeLength, strings.Count(code, "🐶"))
}

func TestRenderWrapsHighBytes(t *testing.T) {
	t.Parallel()

	// only the 6 lowest bits select the emoji
	require.Equal(t, emojihash.Render([]byte{0x00}), emojihash.Render([]byte{0x40}))
	require.Equal(t, emojihash.Render([]byte{0x3f}), emojihash.Render([]byte{0xff}))
}

func TestRenderEmptyFingerprint(t *testing.T) {
	t.Parallel()

	require.Empty(t, emojihash.Render(nil))
	require.Empty(t, emojihash.Render([]byte{}))
}
