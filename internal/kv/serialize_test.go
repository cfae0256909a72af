package kv

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	declRe = regexp.MustCompile(`^static struct kv_entry \*?(__initargs_autogen_\d+)(\[\])? =`)
	refRe  = regexp.MustCompile(`__initargs_autogen_\d+`)
)

// declLines returns the kv_entry declaration lines of generated code.
func declLines(t *testing.T, out string) []string {
	t.Helper()
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "static struct kv_entry") {
			lines = append(lines, l)
		}
	}
	return lines
}

func sampleTree() Node {
	return Top([]Node{
		Array("param", []Node{Leaf("verbose", "1")}),
		Array("captbl", []Node{
			Array("52", []Node{Leaf("type", "captbl"), Leaf("target", "2")}),
			Array("56", []Node{Leaf("type", "pgtbl"), Leaf("target", "2")}),
		}),
		Array("empty", nil),
		Leaf("_", "x"),
		Leaf("_", "y"),
		Leaf("compid", "1"),
	})
}

func countNodes(n Node) int {
	count := 1
	for _, c := range n.Children() {
		count += countNodes(c)
	}
	return count
}

func TestSerializeLeaf(t *testing.T) {
	out := Serialize(Leaf("compid", "3"))

	expected := "#include <initargs.h>\n" +
		"static struct kv_entry __initargs_autogen_0 = { key: \"compid\", vtype: VTYPE_STR, val: { str: \"3\" } };\n" +
		"\nstruct initargs __initargs_root = { type: ARGS_IMPL_KV, d: { kv_ent: &__initargs_autogen_0 } };\n"
	assert.Equal(t, expected, out)
}

func TestSerializeEmptyArray(t *testing.T) {
	out := Serialize(Top(nil))

	assert.Contains(t, out, "static struct kv_entry *__initargs_autogen_1[] = {};")
	assert.Contains(t, out, "static struct kv_entry __initargs_autogen_0 = { key: \"_\", vtype: VTYPE_ARR, val: { arr: { sz: 0, kvs: __initargs_autogen_1 } } };")
}

func TestSerializePreservesChildOrder(t *testing.T) {
	tree := Array("list", []Node{Leaf("a", "A"), Leaf("b", "B"), Leaf("c", "C")})
	out := Serialize(tree)

	// entry=0, array=1, children=2,3,4
	assert.Contains(t, out,
		"static struct kv_entry *__initargs_autogen_1[] = {&__initargs_autogen_2, &__initargs_autogen_3, &__initargs_autogen_4};")
	assert.Contains(t, out, "sz: 3, kvs: __initargs_autogen_1")

	lines := declLines(t, out)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `key: "a"`)
	assert.Contains(t, lines[1], `key: "b"`)
	assert.Contains(t, lines[2], `key: "c"`)
}

func TestSerializeDeclaresBeforeUse(t *testing.T) {
	tree := sampleTree()
	out := Serialize(tree)

	lines := declLines(t, out)

	declared := make(map[string]bool)
	for _, l := range lines {
		m := declRe.FindStringSubmatch(l)
		require.NotNil(t, m, "unexpected declaration line: %s", l)
		name := m[1]

		for _, ref := range refRe.FindAllString(l, -1) {
			if ref == name {
				continue
			}
			assert.True(t, declared[ref], "%s referenced before declaration in %q", ref, l)
		}

		assert.False(t, declared[name], "%s declared twice", name)
		declared[name] = true
	}

	// Each leaf is one record; each array is a record plus its pointer array.
	arrays := 0
	var walk func(Node)
	walk = func(n Node) {
		if n.Kind() == KindArray {
			arrays++
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree)
	assert.Len(t, declared, countNodes(tree)+arrays)

	assert.True(t, strings.HasSuffix(out, "d: { kv_ent: &__initargs_autogen_0 } };\n"))
}

func TestSerializeDeterministic(t *testing.T) {
	first := Serialize(sampleTree())
	second := Serialize(sampleTree())
	assert.Equal(t, first, second)

	// A previous call must not influence the names minted by the next one.
	other := Serialize(Leaf("k", "v"))
	assert.Contains(t, other, "__initargs_autogen_0 =")
	assert.NotContains(t, other, "__initargs_autogen_1")
}

func TestArrayCopiesChildren(t *testing.T) {
	children := []Node{Leaf("a", "1")}
	n := Array("k", children)
	children[0] = Leaf("b", "2")

	require.Len(t, n.Children(), 1)
	assert.Equal(t, "a", n.Children()[0].Key)
}

func TestLookup(t *testing.T) {
	tree := sampleTree()

	captbl, ok := tree.Lookup("captbl")
	require.True(t, ok)
	assert.Equal(t, KindArray, captbl.Kind())
	assert.Len(t, captbl.Children(), 2)

	first, ok := tree.Lookup("_")
	require.True(t, ok)
	assert.Equal(t, "x", first.Value())

	_, ok = tree.Lookup("missing")
	assert.False(t, ok)

	compid, ok := Find(tree.Children(), "compid")
	require.True(t, ok)
	assert.True(t, compid.IsLeaf())
	assert.Equal(t, "1", compid.Value())
}
