package sidecar

import (
	"strings"

	"github.com/excurso/hspp/internal/config"
	"github.com/excurso/hspp/internal/renamer"
)

// Serializes the rename tables for downstream templates. The JSON document
// has one object per non-empty table; the PHP include file has one array per
// non-empty table. Custom-property and animation tables include only entries
// the stylesheet defined; id and class tables include everything. Entries
// appear in interning order, matching the order names were first seen.

func JSON(tables *renamer.Group, options *config.Options) string {
	sb := strings.Builder{}
	sb.WriteString("{")

	writeTable := func(name string, table *renamer.Table, definedOnly bool) {
		if table.Empty() {
			return
		}
		if sb.Len() > 1 {
			sb.WriteString(",")
		}
		sb.WriteString("\"")
		sb.WriteString(escape(name))
		sb.WriteString("\":{")
		first := true
		table.Each(func(original string, entry *renamer.Entry) {
			if definedOnly && !entry.Defined {
				return
			}
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString("\"")
			sb.WriteString(escape(original))
			sb.WriteString("\":\"")
			sb.WriteString(escape(*entry.Cell))
			sb.WriteString("\"")
		})
		sb.WriteString("}")
	}

	writeTable(options.JSONIDObjectName, &tables.IDs, false)
	writeTable(options.JSONClassObjectName, &tables.Classes, false)
	writeTable(options.JSONCPropObjectName, &tables.CustomProperties, true)
	writeTable(options.JSONAnimationObjectName, &tables.Animations, true)

	sb.WriteString("}")
	return sb.String()
}

func PHP(tables *renamer.Group, options *config.Options) string {
	sb := strings.Builder{}
	sb.WriteString("<?php ")

	writeTable := func(name string, table *renamer.Table, definedOnly bool) {
		if table.Empty() {
			return
		}
		sb.WriteString("$")
		sb.WriteString(name)
		sb.WriteString("=array(")
		first := true
		table.Each(func(original string, entry *renamer.Entry) {
			if definedOnly && !entry.Defined {
				return
			}
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString("'")
			sb.WriteString(escapeSingle(original))
			sb.WriteString("'=>'")
			sb.WriteString(escapeSingle(*entry.Cell))
			sb.WriteString("'")
		})
		sb.WriteString("); ")
	}

	writeTable(options.PHPIDArrayName, &tables.IDs, false)
	writeTable(options.PHPClassArrayName, &tables.Classes, false)
	writeTable(options.PHPCPropArrayName, &tables.CustomProperties, true)
	writeTable(options.PHPAnimationArrayName, &tables.Animations, true)

	sb.WriteString("?>")
	return sb.String()
}

func escape(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	return strings.ReplaceAll(text, "\"", "\\\"")
}

func escapeSingle(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	return strings.ReplaceAll(text, "'", "\\'")
}
