package rules

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
)

func pluginRules() []Definition {
	return []Definition{{
		Name:            "no-default-export",
		Description:     "Modules must use named exports",
		DefaultSeverity: SeverityWarn,
		Check: func(ctx *Context) *Finding {
			if bytes.Contains(ctx.Content, []byte("export default")) {
				return &Finding{Message: "default export found"}
			}
			return nil
		},
	}}
}

func TestRegisterSymbol(t *testing.T) {
	reg := NewDefaultRegistry()

	names, err := registerSymbol(reg, "rules.so", pluginRules)
	require.NoError(t, err)
	assert.Equal(t, []string{"no-default-export"}, names)

	findings := reg.RunAll(NewContext("a.ts", []byte("export default 1;"), nil))
	assert.Contains(t, ruleNames(findings), "no-default-export")
}

func TestRegisterSymbolPointer(t *testing.T) {
	reg := NewRegistry()
	fn := pluginRules
	names, err := registerSymbol(reg, "rules.so", &fn)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestRegisterSymbolErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := registerSymbol(reg, "rules.so", func() []string { return nil })
	assert.True(t, ierrors.IsCode(err, ierrors.PluginLoad))

	_, err = registerSymbol(reg, "rules.so", pluginRules)
	require.NoError(t, err)
	_, err = registerSymbol(reg, "rules.so", pluginRules)
	assert.True(t, ierrors.IsCode(err, ierrors.PluginLoad))
	assert.True(t, ierrors.IsCode(err, ierrors.DuplicateRule))
}

func TestLoadPluginMissingFile(t *testing.T) {
	_, err := LoadPlugin(NewRegistry(), filepath.Join(t.TempDir(), "missing.so"))
	require.Error(t, err)
	assert.True(t, ierrors.IsCode(err, ierrors.PluginLoad))
}
