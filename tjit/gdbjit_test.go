package tjit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGDBJITRegisterLinksEntry(t *testing.T) {
	d := newGDBJITDescriptor()
	e := d.register([]byte("symfile-bytes"))

	assert.Equal(t, gdbRegister, d.actionFlag)
	assert.Same(t, e, d.relevantEntry)
	assert.Len(t, d.entries(), 1)
}

func TestGDBJITUnregisterUnlinksEntry(t *testing.T) {
	d := newGDBJITDescriptor()
	a := d.register([]byte("a"))
	b := d.register([]byte("b"))

	d.unregister(a)

	assert.Equal(t, gdbUnregister, d.actionFlag)
	assert.Len(t, d.entries(), 1)
	assert.Same(t, b, d.entries()[0])
}

func TestGDBJITShutdownClearsAllEntries(t *testing.T) {
	d := newGDBJITDescriptor()
	d.register([]byte("a"))
	d.register([]byte("b"))

	d.shutdown()

	assert.Empty(t, d.entries())
}
