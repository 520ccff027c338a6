package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
	"github.com/hannajonsd/ts-introspect/parser"
)

func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newExtractor(t *testing.T, root string, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(root, opts...)
	require.NoError(t, err)
	return e
}

func TestExtractDependenciesClassification(t *testing.T) {
	root := t.TempDir()
	e := newExtractor(t, root)

	src := `
import { a } from './a';
import b from '../lib/b.js';
import { a as again } from './a';
import type { Shape } from './shape';
import { type Id } from './ids';
import { z } from 'zod';
import merge from 'lodash/merge';
import { Button } from '@ui/kit/button';
export * from './reexported';
const lazy = () => import('./lazy');
const fs = require('node:fs');
`
	info, err := e.ExtractDependencies("src/feature/index.ts", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/feature/a", "src/feature/lazy", "src/feature/reexported", "src/lib/b"}, info.Internal)
	assert.Equal(t, []string{"@ui/kit", "lodash", "node:fs", "zod"}, info.External)
	assert.Equal(t, []string{"src/feature/ids", "src/feature/shape"}, info.Types)
}

func TestTypeOnlyRecordedSeparatelyFromValueImport(t *testing.T) {
	e := newExtractor(t, t.TempDir())

	src := `
import type { Config } from './config';
import { loadConfig } from './config';
`
	info, err := e.ExtractDependencies("main.ts", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"config"}, info.Internal)
	assert.Equal(t, []string{"config"}, info.Types)
}

func TestExtractDependenciesEmpty(t *testing.T) {
	e := newExtractor(t, t.TempDir())

	info, err := e.ExtractDependencies("plain.js", []byte("const x = 1;\n"))
	require.NoError(t, err)
	assert.Equal(t, DependencyInfo{Internal: []string{}, External: []string{}, Types: []string{}}, info)
}

func TestExtractDependenciesReadsFromDisk(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "src/util/index.ts", "export const u = 1;\n")
	writeFixture(t, root, "src/helpers.ts", "export const h = 1;\n")
	main := writeFixture(t, root, "src/main.ts", `
import { u } from './util';
import { h } from './helpers';
import { missing } from './missing';
`)
	e := newExtractor(t, root)

	info, err := e.ExtractDependencies(main, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/helpers", "src/missing", "src/util/index"}, info.Internal)
}

func TestExtractDependenciesMissingFile(t *testing.T) {
	e := newExtractor(t, t.TempDir())

	_, err := e.ExtractDependencies("nope.ts", nil)
	require.Error(t, err)
	assert.True(t, ierrors.IsCode(err, ierrors.FileNotFound))

	_, err = e.ExtractExports("nope.ts", nil)
	assert.True(t, ierrors.IsCode(err, ierrors.FileNotFound))
}

func TestExtractDependenciesUnsupportedFile(t *testing.T) {
	e := newExtractor(t, t.TempDir())

	_, err := e.ExtractDependencies("styles.css", []byte("body {}"))
	assert.True(t, ierrors.IsCode(err, ierrors.UnsupportedFile))
}

func TestSyntaxErrors(t *testing.T) {
	src := []byte("import { a } from './a';\nconst = = ;\n")

	lenient := newExtractor(t, t.TempDir())
	info, err := lenient.ExtractDependencies("broken.ts", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, info.Internal)

	strict := newExtractor(t, t.TempDir(), WithStrictSyntax())
	_, err = strict.ExtractDependencies("broken.ts", src)
	assert.True(t, ierrors.IsCode(err, ierrors.ParseFailed))
}

func TestModulePath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	e := newExtractor(t, root)

	assert.Equal(t, "src/a", e.ModulePath("src/a.ts"))
	assert.Equal(t, "src/comp", e.ModulePath(filepath.Join(root, "src", "comp.tsx")))
	assert.Equal(t, "data.json", e.ModulePath("data.json"))
	assert.Equal(t, "shared/x", e.ModulePath(filepath.Join(root, "..", "other", "project", "shared", "x.ts")))
	assert.Equal(t, "elsewhere/y", e.ModulePath(filepath.Join(root, "..", "elsewhere", "y.js")))
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"react":                 "react",
		"lodash/fp":             "lodash",
		"@scope/pkg":            "@scope/pkg",
		"@scope/pkg/deep/path":  "@scope/pkg",
		"/absolute/path":        "",
		"https://cdn.example/x": "",
	}
	for spec, want := range tests {
		assert.Equal(t, want, packageName(spec), spec)
	}
}

func TestExtractExportsExcludesMetadata(t *testing.T) {
	e := newExtractor(t, t.TempDir())

	src := `
export class Store {}
export function open(): void;
export function open(path?: string) {}
export const __metadata = { module: 'store' } as const;
`
	exports, err := e.ExtractExports("store.ts", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []ExportInfo{
		{Name: "Store", Kind: parser.ExportClass},
		{Name: "open", Kind: parser.ExportFunction},
	}, exports)
}

func TestCacheReturnsIndependentCopies(t *testing.T) {
	e := newExtractor(t, t.TempDir(), WithCache(8))
	src := []byte("import { a } from './a';\n")

	first, err := e.ExtractDependencies("m.ts", src)
	require.NoError(t, err)
	first.Internal[0] = "mutated"

	second, err := e.ExtractDependencies("m.ts", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, second.Internal)

	third, err := e.ExtractDependencies("m.ts", []byte("import { b } from './b';\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, third.Internal)
}
