/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "entityctl version "+entity.Version)

	out, err = run(t, "", "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "`+entity.Version+`"`)
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "", "types")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "User")
	assert.Contains(t, lines, "Post")
	assert.Contains(t, lines, "CustomUser")
}

func TestAttrsCommand(t *testing.T) {
	out, err := run(t, "", "attrs", "User")
	require.NoError(t, err)
	assert.Regexp(t, `isAdmin\s+IsAdmin\s+SetIsAdmin`, out)
	assert.Regexp(t, `disabled\s+IsDisabled\s+SetDisabled`, out)

	out, err = run(t, "", "attrs", "BadModel")
	require.NoError(t, err)
	assert.Regexp(t, `messageId\s+-\s+SetMessageId`, out)
	assert.Regexp(t, `topicId\s+GetTopicId\s+-`, out)

	_, err = run(t, "", "attrs", "Nope")
	assert.True(t, errors.IsValidationError(err))
}

func TestConvertCommand(t *testing.T) {
	in := `{"name": "John", "email": "john@example.com", "isAdmin": true}`

	out, err := run(t, in, "convert", "User", "--to", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: John\nemail: john@example.com\nisAdmin: true\ndisabled: false\n", out)

	out, err = run(t, in, "convert", "User")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"John","email":"john@example.com","isAdmin":true,"disabled":false}`+"\n", out)

	_, err = run(t, `{"nickname": "JJ"}`, "convert", "User")
	assert.True(t, errors.IsUnknownAttribute(err))

	_, err = run(t, in, "convert", "User", "--to", "xml")
	assert.True(t, errors.IsValidationError(err))
}

func TestConvertFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Greeting\nuserId: 7\nlabels: [a, b]\n"), 0o644))

	out, err := run(t, "", "convert", "Post", "--in", path, "--to", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"userId":7`)
	assert.Contains(t, out, `"labels":["a","b"]`)
}

func TestDumpCommand(t *testing.T) {
	out, err := run(t, `{"name": "John", "email": "john@example.com"}`, "dump", "User")
	require.NoError(t, err)
	assert.Contains(t, out, "models.User")
	assert.Contains(t, out, `"john@example.com"`)
}

func TestPutRequiresTable(t *testing.T) {
	t.Setenv("AWS_DDB_TABLE", "")
	t.Setenv("ENTITY_AWS_DDB_TABLE", "")
	t.Setenv("ENTITY_AWS_TABLE", "")
	_, err := run(t, `{"name": "John", "email": "john@example.com"}`, "put", "User")
	assert.True(t, errors.IsValidationError(err))
}
