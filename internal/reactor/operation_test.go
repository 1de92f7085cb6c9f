package reactor

import "testing"

func TestAddOpMonotone(t *testing.T) {
	mask, grew := addOp(None, Read)
	if !grew || mask != Read {
		t.Fatalf("add Read to None: got mask=%v grew=%v", mask, grew)
	}
	mask, grew = addOp(mask, Read)
	if grew {
		t.Fatalf("re-adding Read should not grow the mask")
	}
	mask, grew = addOp(mask, Write)
	if !grew || mask != Read|Write {
		t.Fatalf("add Write to Read: got mask=%v grew=%v", mask, grew)
	}
}

func TestDelOpMonotone(t *testing.T) {
	mask, shrank := delOp(Read|Write, Write)
	if !shrank || mask != Read {
		t.Fatalf("del Write from Read|Write: got mask=%v shrank=%v", mask, shrank)
	}
	mask, shrank = delOp(mask, Write)
	if shrank {
		t.Fatalf("deleting an already-absent bit should not shrink the mask")
	}
}

func TestOperationHas(t *testing.T) {
	m := Read | Write
	if !m.Has(Read) || !m.Has(Write) {
		t.Fatalf("expected both bits set in %v", m)
	}
	if None.Has(Read) {
		t.Fatalf("None must not have Read")
	}
}
