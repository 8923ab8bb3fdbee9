package sidecar

import (
	"encoding/json"
	"testing"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/renamer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tablesForTest() *renamer.Group {
	tables := renamer.NewGroup()

	idEntry := tables.IDs.Intern("header", true)
	*idEntry.Cell = "a"

	classEntry := tables.Classes.Intern("button", true)
	*classEntry.Cell = "a"
	classEntry = tables.Classes.Intern("button-primary", true)
	*classEntry.Cell = "b"

	defined := tables.CustomProperties.Intern("main-color", true)
	*defined.Cell = "a"
	undeclared := tables.CustomProperties.Intern("ghost", false)
	*undeclared.Cell = "b"

	return tables
}

func TestJSON(t *testing.T) {
	options := config.Defaults()
	observed := JSON(tablesForTest(), &options)

	assert.Equal(t,
		`{"ids":{"header":"a"},"classes":{"button":"a","button-primary":"b"},"cprops":{"main-color":"a"}}`,
		observed)

	// The document must be valid JSON
	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(observed), &decoded))
	assert.Equal(t, "a", decoded["ids"]["header"])

	// Undeclared custom properties are excluded
	_, ok := decoded["cprops"]["ghost"]
	assert.False(t, ok)

	// Empty tables are omitted entirely
	_, ok = decoded["anims"]
	assert.False(t, ok)
}

func TestJSONObjectNames(t *testing.T) {
	options := config.Defaults()
	options.JSONIDObjectName = "identifiers"
	observed := JSON(tablesForTest(), &options)
	assert.Contains(t, observed, `"identifiers":{"header":"a"}`)
}

func TestPHP(t *testing.T) {
	options := config.Defaults()
	observed := PHP(tablesForTest(), &options)

	assert.Equal(t,
		`<?php $ids=array('header'=>'a'); `+
			`$classes=array('button'=>'a','button-primary'=>'b'); `+
			`$cprops=array('main-color'=>'a'); ?>`,
		observed)
}

func TestEmptyTables(t *testing.T) {
	options := config.Defaults()
	tables := renamer.NewGroup()
	assert.Equal(t, "{}", JSON(tables, &options))
	assert.Equal(t, "<?php ?>", PHP(tables, &options))
}
