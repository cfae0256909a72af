package resources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/cosbuild/composer/internal/errors"
	"github.com/cosbuild/composer/internal/kv"
	"github.com/cosbuild/composer/internal/system"
)

func mustSystem(t *testing.T, spec *system.Spec) *system.System {
	t.Helper()
	sys, err := system.New(spec)
	require.NoError(t, err)
	return sys
}

func mustID(t *testing.T, sys *system.System, name string) system.ComponentID {
	t.Helper()
	id, ok := sys.ComponentID(name)
	require.True(t, ok, "component %s", name)
	return id
}

func slot(idx, typ, target string) kv.Node {
	return kv.Array(idx, []kv.Node{kv.Leaf("type", typ), kv.Leaf("target", target)})
}

func capmgrSpec() *system.Spec {
	return &system.Spec{
		Components: []system.ComponentSpec{
			{Name: "cm", Source: "capmgr.simple", Provides: []string{"capmgr"}},
			{Name: "a", Source: "tests.unit_a", CapMgr: "cm"},
			{Name: "b", Source: "tests.unit_b", CapMgr: "cm"},
		},
	}
}

func TestAssignCapmgrEndToEnd(t *testing.T) {
	sys := mustSystem(t, capmgrSpec())

	res, err := Assign(sys, Options{})
	require.NoError(t, err)

	cm := mustID(t, sys, "cm")
	require.Equal(t, system.ComponentID(1), cm)

	want := []kv.Node{
		kv.Array("scheduler_hierarchy", nil),
		kv.Array("init_hierarchy", nil),
		kv.Array("captbl", []kv.Node{
			slot("52", "captbl", "2"),
			slot("56", "pgtbl", "2"),
			slot("60", "comp", "2"),
			slot("64", "captbl", "3"),
			slot("68", "pgtbl", "3"),
			slot("72", "comp", "3"),
		}),
		kv.Array("names", []kv.Node{
			kv.Leaf("2", "tests.unit_a.global.a"),
			kv.Leaf("3", "tests.unit_b.global.b"),
		}),
		kv.Array("addrspc_shared", nil),
		kv.Leaf("captbl_end", "76"),
	}
	assert.Equal(t, want, res.Args(cm))

	// Plain clients only get the untouched frontier.
	for _, name := range []string{"a", "b"} {
		assert.Equal(t, []kv.Node{kv.Leaf("captbl_end", "52")}, res.Args(mustID(t, sys, name)))
	}

	assert.Equal(t, []system.ComponentID{1, 2, 3}, res.Components())
}

func TestAssignSchedulerHierarchy(t *testing.T) {
	sys := mustSystem(t, &system.Spec{
		Components: []system.ComponentSpec{
			{Name: "root", Source: "sched.root", Provides: []string{"scheduler"}},
			{Name: "cm", Source: "capmgr.simple", Provides: []string{"capmgr"}, Scheduler: "root"},
			{Name: "sched", Source: "sched.pfprr", Provides: []string{"scheduler"}, Scheduler: "root", CapMgr: "cm"},
			{Name: "x", Source: "tests.x", Scheduler: "sched"},
			{Name: "y", Source: "tests.y", Scheduler: "sched"},
		},
		AddressSpaces: []system.AddressSpaceSpec{
			{Name: "apps", Components: []string{"x", "y"}},
		},
	})

	res, err := Assign(sys, Options{})
	require.NoError(t, err)

	args := res.Args(mustID(t, sys, "cm"))

	hier, ok := kv.Find(args, "scheduler_hierarchy")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{kv.Leaf("3", "1")}, hier.Children())

	initHier, ok := kv.Find(args, "init_hierarchy")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{kv.Leaf("4", "3"), kv.Leaf("5", "3")}, initHier.Children())

	shared, ok := kv.Find(args, "addrspc_shared")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{kv.Leaf("_", "4"), kv.Leaf("_", "5")}, shared.Children())

	end, ok := kv.Find(args, "captbl_end")
	require.True(t, ok)
	assert.Equal(t, "64", end.Value())

	// The root scheduler has two clients: cm (init) and sched (sched),
	// emitted in reverse discovery order.
	execute, ok := kv.Find(res.Args(mustID(t, sys, "root")), "execute")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{kv.Leaf("3", "sched"), kv.Leaf("2", "init")}, execute.Children())
}

func TestAssignExecuteReversed(t *testing.T) {
	sys := mustSystem(t, &system.Spec{
		Components: []system.ComponentSpec{
			{Name: "s", Source: "sched.root", Provides: []string{"scheduler"}},
			{Name: "c1", Source: "tests.c1", Scheduler: "s"},
			{Name: "c2", Source: "sched.child", Provides: []string{"scheduler"}, Scheduler: "s"},
			{Name: "c3", Source: "tests.c3", Scheduler: "s"},
		},
	})

	res, err := Assign(sys, Options{})
	require.NoError(t, err)

	execute, ok := kv.Find(res.Args(1), "execute")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{
		kv.Leaf("4", "init"),
		kv.Leaf("3", "sched"),
		kv.Leaf("2", "init"),
	}, execute.Children())

	// c2 is a scheduler without clients: empty execute section.
	execute, ok = kv.Find(res.Args(3), "execute")
	require.True(t, ok)
	assert.Empty(t, execute.Children())

	// Non-schedulers emit no execute section.
	_, ok = kv.Find(res.Args(2), "execute")
	assert.False(t, ok)
}

func TestAssignConstructorReplicatesCapmgrTable(t *testing.T) {
	sys := mustSystem(t, &system.Spec{
		Components: []system.ComponentSpec{
			{Name: "boot", Source: "no_interface.llbooter", Provides: []string{"constructor"}},
			{Name: "cm", Source: "capmgr.simple", Provides: []string{"capmgr"}, Constructor: "boot"},
			{Name: "a", Source: "tests.a", CapMgr: "cm", Constructor: "boot"},
			{Name: "b", Source: "tests.b", CapMgr: "cm", Constructor: "boot"},
			{Name: "c", Source: "tests.c", CapMgr: "cm", Constructor: "boot"},
		},
	})

	res, err := Assign(sys, Options{})
	require.NoError(t, err)

	cm := mustID(t, sys, "cm")
	captblSection, ok := kv.Find(res.Args(cm), "captbl")
	require.True(t, ok)
	require.Len(t, captblSection.Children(), 9)

	delegations, ok := kv.Find(res.Args(mustID(t, sys, "boot")), "captbl_delegations")
	require.True(t, ok)
	require.Len(t, delegations.Children(), 1)

	replica, ok := delegations.Lookup(cm.String())
	require.True(t, ok)
	assert.Equal(t, captblSection.Children(), replica.Children())
}

func TestAssignVirtualResources(t *testing.T) {
	sys := mustSystem(t, &system.Spec{
		Components: []system.ComponentSpec{
			{Name: "mem", Source: "shmem.server"},
			{
				Name: "app", Source: "tests.app",
				VirtualResources: []system.VirtResUseSpec{{
					Type: "shm",
					Instances: []system.VirtResInstanceSpec{{
						Instance:     "region0",
						Name:         "ring",
						Access:       []string{"read", "write"},
						Associations: []system.AssociationSpec{{Type: "evt", Instance: "e0"}, {Type: "evt", Instance: "nope"}},
					}},
				}},
			},
			{Name: "idle", Source: "tests.idle"},
		},
		VirtualResources: []system.VirtualResourceSpec{
			{
				Name: "shmem", Type: "shm", Server: "mem",
				Resources: []system.VirtResDefSpec{
					{Instance: "region0", Params: map[string]any{"size": "4096", "peers": []any{"region1", "ghost"}}},
					{Instance: "region1"},
				},
			},
			{
				Name: "events", Type: "evt", Server: "mem",
				Resources: []system.VirtResDefSpec{{Instance: "e0"}},
			},
		},
	})

	res, err := Assign(sys, Options{Resolve: ResolveWarn})
	require.NoError(t, err)

	sysVR, ok := kv.Find(res.Args(1), "sys_virt_resources")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{
		kv.Array("shm", []kv.Node{
			kv.Array("sub_virt_resource", []kv.Node{
				kv.Leaf("id", "1"),
				kv.Array("params", []kv.Node{
					kv.Array("sub_sub_virt_resource", []kv.Node{kv.Leaf("id", "2")}),
					kv.Leaf("size", "4096"),
				}),
				kv.Array("client", []kv.Node{kv.Leaf("comp_id", "2")}),
			}),
			kv.Array("sub_virt_resource", []kv.Node{
				kv.Leaf("id", "2"),
				kv.Array("params", nil),
				kv.Array("client", nil),
			}),
		}),
		kv.Array("evt", []kv.Node{
			kv.Array("sub_virt_resource", []kv.Node{
				kv.Leaf("id", "3"),
				kv.Array("params", nil),
				kv.Array("client", nil),
			}),
		}),
	}, sysVR.Children())

	compVR, ok := kv.Find(res.Args(2), "comp_virt_resources")
	require.True(t, ok)
	assert.Equal(t, []kv.Node{
		kv.Array("shm", []kv.Node{
			kv.Array("region0", []kv.Node{
				kv.Array("association", []kv.Node{
					kv.Array("_", []kv.Node{kv.Leaf("vr_type", "evt"), kv.Leaf("inst_id", "3")}),
					kv.Array("_", []kv.Node{kv.Leaf("vr_type", "evt")}),
				}),
				kv.Leaf("id", "1"),
				kv.Array("param", []kv.Node{
					kv.Leaf("peers_0", "region1"),
					kv.Leaf("peers_1", "ghost"),
					kv.Leaf("size", "4096"),
				}),
				kv.Array("access_list", []kv.Node{kv.Leaf("access", "read"), kv.Leaf("access", "write")}),
				kv.Leaf("name", "ring"),
			}),
		}),
	}, compVR.Children())

	// The server declares no uses and the idle component neither serves
	// nor uses anything.
	_, ok = kv.Find(res.Args(1), "comp_virt_resources")
	assert.False(t, ok)
	for _, key := range []string{"sys_virt_resources", "comp_virt_resources"} {
		_, ok = kv.Find(res.Args(3), key)
		assert.False(t, ok, key)
	}
}

func TestAssignStrictRejectsUnresolvedReference(t *testing.T) {
	sys := mustSystem(t, &system.Spec{
		Components: []system.ComponentSpec{{Name: "mem", Source: "shmem.server"}},
		VirtualResources: []system.VirtualResourceSpec{{
			Name: "shmem", Type: "shm", Server: "mem",
			Resources: []system.VirtResDefSpec{{Instance: "r0", Params: map[string]any{"peers": []any{"ghost"}}}},
		}},
	})

	_, err := Assign(sys, Options{Resolve: ResolveStrict})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, UnresolvedReference, verr.Violations[0].Kind)
	assert.Equal(t, "ghost", verr.Violations[0].Ref)

	_, err = Assign(sys, Options{Resolve: ResolveWarn})
	assert.NoError(t, err)
}

func TestAssignDeterministic(t *testing.T) {
	spec := capmgrSpec()
	spec.Components = append(spec.Components,
		system.ComponentSpec{Name: "s", Source: "sched.root", Provides: []string{"scheduler"}},
		system.ComponentSpec{Name: "c", Source: "tests.c", Scheduler: "s", CapMgr: "cm"},
	)

	render := func() map[system.ComponentID]string {
		res, err := Assign(mustSystem(t, spec), Options{})
		require.NoError(t, err)
		out := make(map[system.ComponentID]string)
		for _, id := range res.Components() {
			out[id] = kv.Serialize(kv.Top(res.Args(id)))
		}
		return out
	}

	assert.Equal(t, render(), render())
}

func TestResultArgsUnknownPanics(t *testing.T) {
	res, err := Assign(mustSystem(t, capmgrSpec()), Options{})
	require.NoError(t, err)

	_, ok := res.Lookup(42)
	assert.False(t, ok)
	assert.Panics(t, func() { res.Args(42) })
}

func TestResultArgsReturnsCopy(t *testing.T) {
	res, err := Assign(mustSystem(t, capmgrSpec()), Options{})
	require.NoError(t, err)

	args := res.Args(2)
	args[0] = kv.Leaf("tampered", "1")
	assert.Equal(t, "captbl_end", res.Args(2)[0].Key)
}

func TestParseResolvePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ResolvePolicy
		wantErr bool
	}{
		{"", ResolveWarn, false},
		{"warn", ResolveWarn, false},
		{"STRICT", ResolveStrict, false},
		{"fail", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResolvePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) ResolvePolicy {
	t.Helper()
	p, err := ParseResolvePolicy(s)
	require.NoError(t, err)
	return p
}
