package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFileTree(t *testing.T) {
	files := map[string]string{
		"cm/initargs.c":   "capmgr",
		"a/initargs.c":    "",
		"boot/initargs.c": "constructor",
	}

	out := stripAnsi(RenderFileTree("build", files))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	assert.Equal(t, "build/", lines[0])
	assert.Equal(t, "├── a/", lines[1])
	assert.Contains(t, out, "└── cm/")
	assert.Contains(t, out, "constructor")
	assert.Contains(t, out, "initargs.c")

	// Directories are sorted alphabetically.
	assert.Less(t, strings.Index(out, "a/"), strings.Index(out, "boot/"))
	assert.Less(t, strings.Index(out, "boot/"), strings.Index(out, "cm/"))
}

func TestRenderFileTreeEmpty(t *testing.T) {
	assert.Empty(t, RenderFileTree("build", nil))
}

func TestTable(t *testing.T) {
	tbl := NewTable("SLOT", "TYPE", "TARGET").
		Row("52", "captbl", "2").
		Row("56", "pgtbl", "2")

	assert.Equal(t, 2, tbl.Len())
	out := tbl.String()
	for _, want := range []string{"SLOT", "TYPE", "TARGET", "52", "pgtbl"} {
		assert.Contains(t, out, want)
	}
}

func TestTableGrouped(t *testing.T) {
	tbl := NewTable("COMPONENT", "KEY", "VALUE").Grouped().
		Row("cm", "compid", "1").
		Row("cm", "captbl_end", "76").
		Row("a", "compid", "2")

	out := stripAnsi(tbl.String())
	assert.Equal(t, 1, strings.Count(out, "cm"))
	assert.Contains(t, out, "captbl_end")
	assert.Contains(t, out, "76")
}
