package symtab_test

import (
	"testing"

	"github.com/stanimation3d/bessambly/symtab"
)

func TestTable_InsertAndLookup(t *testing.T) {
	table := symtab.New()
	if err := table.Insert("LOOP", symtab.Label, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sym, ok := table.Lookup("LOOP")
	if !ok {
		t.Fatal("expected LOOP to be found")
	}
	if sym.Address != 4 || sym.Kind != symtab.Label {
		t.Errorf("unexpected symbol: %+v", sym)
	}
}

func TestTable_DuplicateInsertIsAnError(t *testing.T) {
	table := symtab.New()
	if err := table.Insert("LOOP", symtab.Label, 0); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if err := table.Insert("LOOP", symtab.Label, 8); err == nil {
		t.Fatal("expected an error for a duplicate label")
	}
}

func TestTable_LookupMissingReturnsFalse(t *testing.T) {
	table := symtab.New()
	if _, ok := table.Lookup("NOWHERE"); ok {
		t.Fatal("expected ok=false for an undefined symbol")
	}
}

func TestTable_LenAndAll(t *testing.T) {
	table := symtab.New()
	table.Insert("A", symtab.Label, 0)
	table.Insert("B", symtab.Label, 4)

	if table.Len() != 2 {
		t.Fatalf("expected length 2, got %d", table.Len())
	}
	all := table.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries from All, got %d", len(all))
	}
}
