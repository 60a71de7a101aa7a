package transport

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wirecodec/errors"
)

// memoryModule is a module exporting one page of memory as "memory".
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

func newMemory(t *testing.T) api.Memory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		t.Fatal("memory export missing")
	}
	return mem
}

func TestMemoryWriterReader(t *testing.T) {
	mem := newMemory(t)

	w, err := NewMemoryWriter(mem, 100, 8)
	if err != nil {
		t.Fatalf("NewMemoryWriter failed: %v", err)
	}
	if err := w.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write([]byte{5, 6, 7, 8, 9}); err == nil {
		t.Fatal("write past region should fail")
	} else if kind, _ := errors.KindOf(err); kind != errors.KindCapacity {
		t.Errorf("kind = %v, want capacity", kind)
	}
	if w.Len() != 4 || w.Offset() != 104 {
		t.Errorf("Len=%d Offset=%d", w.Len(), w.Offset())
	}

	r, err := NewMemoryReader(mem, 100, 4)
	if err != nil {
		t.Fatalf("NewMemoryReader failed: %v", err)
	}
	v, err := r.Read(4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(v, []byte{1, 2, 3, 4}) {
		t.Errorf("Read = %v", v)
	}

	// Views alias guest memory.
	mem.WriteByte(100, 42)
	if v[0] != 42 {
		t.Error("view should observe guest writes")
	}
	if r.HasMore() {
		t.Error("HasMore should be false at region end")
	}
	if _, err := r.Read(1); err == nil {
		t.Error("read past region should fail")
	}
}

func TestMemoryRegionBounds(t *testing.T) {
	mem := newMemory(t)
	size := mem.Size()

	if _, err := NewMemoryReader(mem, size-2, 4); err == nil {
		t.Error("region beyond memory should fail")
	}
	if _, err := NewMemoryWriter(mem, 0xFFFFFFFF, 2); err == nil {
		t.Error("overflowing region should fail")
	}
	if _, err := NewMemoryReader(nil, 0, 0); err == nil {
		t.Error("nil memory should fail")
	}

	r, err := NewMemoryReader(mem, size-4, 4)
	if err != nil {
		t.Fatalf("NewMemoryReader at end failed: %v", err)
	}
	dst := make([]byte, 4)
	if err := r.ReadInto(dst); err != nil {
		t.Fatalf("ReadInto failed: %v", err)
	}
	if r.Offset() != 4 {
		t.Errorf("Offset = %d, want 4", r.Offset())
	}
}
