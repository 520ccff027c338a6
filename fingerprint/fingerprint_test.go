package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const code = `import { helper } from './helper';

export function run(input: string): string {
  return helper(input);
}
`

const banner = `// ==========================================
// FILE INTROSPECTION
// ==========================================
`

func block(hash, suffix string) string {
	return `export const __metadata = {
  module: 'run',
  description: 'Runs things',
  dependencies: { internal: ['helper'], external: [], types: [] },
  _meta: { contentHash: '` + hash + `' },
}` + suffix + ";\n"
}

func TestComputeIgnoresMetadataBlockVariants(t *testing.T) {
	base := Compute([]byte(code))

	variants := []string{
		block("0000000000000000", ""),
		block("0000000000000000", " as const"),
		block("ffffffffffffffff", " satisfies FileMetadata"),
		banner + block("1234567890abcdef", " as const"),
		"\n\n" + banner + block("", ""),
		strings.Replace(block("x", ""), "export const", "const", 1),
	}
	for _, v := range variants {
		assert.Equal(t, base, Compute([]byte(code+v)), v)
		assert.Equal(t, base, Compute([]byte(code+"\n"+v)), v)
	}
}

func TestComputeKeepsCommentsAboveBlock(t *testing.T) {
	unbannered := block("0000000000000000", " as const")

	tests := []struct {
		name  string
		code  string
		block string
	}{
		{"doc comment", code + "/** Trailing note */\n", unbannered},
		{"rule above banner", code + "// ------------------------------\n", banner + unbannered},
		{"comment mentioning metadata", code + "// load metadata lazily\n", unbannered},
		{"comment mentioning introspection", code + "// introspection helpers\n", banner + unbannered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Compute([]byte(tt.code)), Compute([]byte(tt.code+tt.block)))
		})
	}
}

func TestComputeSeesEditsToCommentsAboveBlock(t *testing.T) {
	before := code + "/** Loads metadata */\n" + block("0000000000000000", "")
	after := code + "/** Loads metadata eagerly */\n" + block("0000000000000000", "")

	assert.NotEqual(t, Compute([]byte(before)), Compute([]byte(after)))
}

func TestComputeDetectsCodeChanges(t *testing.T) {
	changed := strings.Replace(code, "helper(input)", "helper(input.trim())", 1)

	assert.NotEqual(t, Compute([]byte(code)), Compute([]byte(changed)))
	assert.NotEqual(t,
		Compute([]byte(code+block("a", ""))),
		Compute([]byte(changed+block("a", ""))))
}

func TestComputeNormalizesWhitespace(t *testing.T) {
	crlf := strings.ReplaceAll(code, "\n", "\r\n")
	trailing := strings.ReplaceAll(code, ";\n", ";   \n")
	edges := "\n\n" + code + "\n\n"

	base := Compute([]byte(code))
	assert.Equal(t, base, Compute([]byte(crlf)))
	assert.Equal(t, base, Compute([]byte(trailing)))
	assert.Equal(t, base, Compute([]byte(edges)))
}

func TestComputeDetectsBlankLines(t *testing.T) {
	assert.NotEqual(t, Compute([]byte("a;\nb;")), Compute([]byte("a;\n\nb;")))

	blank := strings.Replace(code, "\n\n", "\n\n\n\n", 1)
	assert.NotEqual(t, Compute([]byte(code)), Compute([]byte(blank)))
}

func TestComputeBlockBetweenCode(t *testing.T) {
	head := "import { a } from './a';\n"
	tail := "export const b = a;\n"

	assert.Equal(t, Compute([]byte(head+tail)), Compute([]byte(head+"\n"+banner+block("x", "")+"\n"+tail)))
}

func TestComputeUnicodeComposition(t *testing.T) {
	composed := "const name = 'caf\u00e9';\n"
	decomposed := "const name = 'cafe\u0301';\n"

	assert.Equal(t, Compute([]byte(composed)), Compute([]byte(decomposed)))
}

func TestComputeEmptyContent(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c14", Compute(nil))
	assert.Len(t, Compute([]byte(code)), Length)
}

func TestComputeIgnoresDecoysInStrings(t *testing.T) {
	withDecoy := code + "const s = \"export const __metadata = { contentHash: 'abc' }\";\n"

	assert.NotEqual(t, Compute([]byte(code)), Compute([]byte(withDecoy)))
	_, ok := Stored([]byte(withDecoy))
	assert.False(t, ok)
}

func TestStored(t *testing.T) {
	hash, ok := Stored([]byte(code + banner + block("0123456789abcdef", " as const")))
	require.True(t, ok)
	assert.Equal(t, "0123456789abcdef", hash)

	_, ok = Stored([]byte(code))
	assert.False(t, ok)
}

func TestCheckAndUpdate(t *testing.T) {
	content := []byte(code + banner + block("0000000000000000", " as const"))

	st, err := Check(content)
	require.NoError(t, err)
	assert.True(t, st.HasStored)
	assert.True(t, st.Stale)
	assert.Equal(t, Compute([]byte(code)), st.Current)

	updated, err := Update(content)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "contentHash: '"+st.Current+"'")

	st, err = Check(updated)
	require.NoError(t, err)
	assert.False(t, st.Stale)

	again, err := Update(updated)
	require.NoError(t, err)
	assert.Equal(t, string(updated), string(again))
}

func TestCheckWithoutStoredHash(t *testing.T) {
	st, err := Check([]byte(code))
	require.NoError(t, err)
	assert.False(t, st.HasStored)
	assert.False(t, st.Stale)

	_, err = Update([]byte(code))
	assert.Error(t, err)
}
