package kv

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// symbolPrefix prefixes every generated C symbol.
	symbolPrefix = "__initargs_autogen_"

	// RootSymbol is the symbol the boot-time argument library reads.
	RootSymbol = "__initargs_root"

	header = "#include <initargs.h>\n"
)

// namespace mints unique symbol names for one Serialize call.
type namespace struct {
	next uint32
}

func (ns *namespace) fresh() string {
	name := symbolPrefix + strconv.FormatUint(uint64(ns.next), 10)
	ns.next++
	return name
}

// Serialize generates the C declarations for a tree. Every node becomes a
// static kv_entry record declared before anything that references it, and a
// final initargs root record points at the first record minted, which is
// the node passed in.
//
// Keys and values are emitted verbatim; they must not contain double quotes
// or backslashes.
func Serialize(root Node) string {
	ns := &namespace{}
	decls, _ := root.serialize(ns)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(decls)
	fmt.Fprintf(&b, "\nstruct initargs %s = { type: ARGS_IMPL_KV, d: { kv_ent: &%s0 } };\n", RootSymbol, symbolPrefix)
	return b.String()
}

// serialize returns the declarations for n and its subtree together with the
// expression referencing n's record.
func (n Node) serialize(ns *namespace) (string, string) {
	switch n.kind {
	case KindString:
		name := ns.fresh()
		decl := fmt.Sprintf("static struct kv_entry %s = { key: \"%s\", vtype: VTYPE_STR, val: { str: \"%s\" } };\n",
			name, n.Key, n.str)
		return decl, "&" + name
	case KindArray:
		// The record name is minted before the children so the root of any
		// tree is always symbol 0.
		entry := ns.fresh()
		arr := ns.fresh()

		var decls strings.Builder
		refs := make([]string, 0, len(n.children))
		for _, c := range n.children {
			d, ref := c.serialize(ns)
			decls.WriteString(d)
			refs = append(refs, ref)
		}

		fmt.Fprintf(&decls, "static struct kv_entry *%s[] = {%s};\n", arr, strings.Join(refs, ", "))
		fmt.Fprintf(&decls, "static struct kv_entry %s = { key: \"%s\", vtype: VTYPE_ARR, val: { arr: { sz: %d, kvs: %s } } };\n",
			entry, n.Key, len(n.children), arr)
		return decls.String(), "&" + entry
	default:
		panic(fmt.Sprintf("kv: node %q has unknown kind %d", n.Key, n.kind))
	}
}
