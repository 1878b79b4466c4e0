//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// =============================================================================
// PURITY TEST - No type alias re-exports of core types
// =============================================================================

// TestGovernance_NoTypeAliasReexports ensures packages use core types
// directly instead of re-exporting them as aliases.
func TestGovernance_NoTypeAliasReexports(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	corePath := modulePath + "/pkg/core"
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 || pkg.PkgPath == corePath {
			continue
		}

		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			typeName, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !typeName.Exported() || !typeName.IsAlias() {
				continue
			}
			named, ok := types.Unalias(typeName.Type()).(*types.Named)
			if !ok || named.Obj().Pkg() == nil || named.Obj().Pkg().Path() != corePath {
				continue
			}
			t.Errorf("PURITY VIOLATION: Package '%s' re-exports type alias '%s'.\n"+
				"   Fix: Remove the alias. Consumers should use core.%s directly.",
				strings.TrimPrefix(pkg.PkgPath, modulePath+"/"), name, named.Obj().Name())
		}
	}
}

// =============================================================================
// LAYERING TEST - pkg/ never depends on internal/
// =============================================================================

// TestGovernance_PkgDoesNotImportInternal keeps the public packages usable
// without the CLI and pipeline internals.
func TestGovernance_PkgDoesNotImportInternal(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, modulePath+"/internal/") {
				t.Errorf("LAYERING VIOLATION: '%s' imports '%s'",
					strings.TrimPrefix(pkg.PkgPath, modulePath+"/"), importPath)
			}
		}
	}
}
