//go:build governance

package core_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/scriptdeps"

// TestGovernance_CoreCohesion verifies that exported identifiers in pkg/core
// are shared by more than one package. Anything used by a single consumer
// belongs in that consumer.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	var corePkg *packages.Package
	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" {
			corePkg = p
			break
		}
	}
	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	// identifier -> set of consuming packages
	usage := make(map[string]map[string]bool)
	scope := corePkg.Types.Scope()
	for _, name := range scope.Names() {
		if scope.Lookup(name).Exported() {
			usage[name] = make(map[string]bool)
		}
	}

	for _, p := range pkgs {
		if p.PkgPath == corePkg.PkgPath || p.TypesInfo == nil {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			if obj.Pkg() == nil || obj.Pkg().Path() != corePkg.PkgPath {
				continue
			}
			if users, ok := usage[obj.Name()]; ok {
				users[strings.TrimPrefix(p.PkgPath, modulePath+"/")] = true
			}
		}
	}

	for name, users := range usage {
		if cohesionAllowlist[name] {
			continue
		}
		switch len(users) {
		case 0:
			t.Logf("WARNING: unused core identifier: %s (consider deleting)", name)
		case 1:
			for user := range users {
				t.Errorf("COHESION VIOLATION: 'core.%s' is used ONLY by '%s'.\n"+
					"   Fix: move it from pkg/core to %s.", name, user, user)
			}
		}
	}
}

// cohesionAllowlist names identifiers that are part of the renderer protocol
// or the record model and live in core even with a single consumer.
var cohesionAllowlist = map[string]bool{
	"NewPlaceholder":  true,
	"Metadata":        true,
	"EdgeClass":       true,
	"EdgeDirect":      true,
	"EdgeIndirect":    true,
	"EventType":       true,
	"EventAddNode":    true,
	"EventRemoveNode": true,
	"EventAddEdge":    true,
	"EventRemoveEdge": true,
	"EventSinkFunc":   true,
	"Snapshot":        true,
	"ScriptEntry":     true,
}
