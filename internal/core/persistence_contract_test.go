package core

import (
	"go/types"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestRecordStoreImplementationsHardening ensures only the sanctioned
// persistence packages provide concrete domain.RecordStore implementations.
// Adding a backend elsewhere requires updating the allowed list.
func TestRecordStoreImplementationsHardening(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "chocan/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var recordStore *types.Interface
	for _, p := range pkgs {
		if p.PkgPath != "chocan/pkg/domain" {
			continue
		}
		obj := p.Types.Scope().Lookup("RecordStore")
		if obj == nil {
			t.Fatalf("domain.RecordStore not found")
		}
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok {
			t.Fatalf("domain.RecordStore is not an interface")
		}
		recordStore = iface
	}
	if recordStore == nil {
		t.Fatalf("failed to resolve RecordStore interface")
	}
	allowed := map[string]struct{}{
		"chocan/internal/infra/persistence/memory":   {},
		"chocan/internal/infra/persistence/sqlstore": {},
		"chocan/internal/infra/persistence/sqlite":   {},
		"chocan/internal/infra/persistence/postgres": {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		for _, name := range p.Types.Scope().Names() {
			named, ok := p.Types.Scope().Lookup(name).Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), recordStore) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		_, file, line, _ := runtime.Caller(0)
		t.Fatalf("unexpected RecordStore implementations (update allowed list intentionally if adding a new backend):\nfile=%s:%d\n%v", filepath.Base(file), line, unexpected)
	}
}
