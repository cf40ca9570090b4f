package tjitconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemetrace/tjit/tjit"
)

func TestApplyOverridesOnlySetKeys(t *testing.T) {
	tu := tjit.NewTunables()
	doc := []byte(`
hot_loop: 10
max_sides: 5
`)
	require.NoError(t, Apply(doc, tu))

	assert.Equal(t, 10, tu.HotLoop())
	assert.Equal(t, 5, tu.MaxSides())
	assert.Equal(t, 40, tu.HotExit(), "unset keys keep their built-in default")
}

func TestApplyRejectsOutOfRangeValue(t *testing.T) {
	tu := tjit.NewTunables()
	doc := []byte(`hot_loop: 100000`)
	err := Apply(doc, tu)
	require.Error(t, err)
	assert.Equal(t, 59, tu.HotLoop(), "rejected value must not stick")
}

func TestApplyEmptyDocumentIsNoop(t *testing.T) {
	tu := tjit.NewTunables()
	require.NoError(t, Apply([]byte(``), tu))
	assert.Equal(t, 59, tu.HotLoop())
}
