package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceDescriptorValidateRejectsMismatchedModules(t *testing.T) {
	d := &SourceDescriptor{Key: "wildcard", Device: "DET/*/OUT"}
	err := d.Validate()
	require.Error(t, err)

	d.Modules = []int{0, 1, 2, 3}
	require.NoError(t, d.Validate())
	assert.Equal(t, []string{"", ".value"}, d.PropertySuffixRetry)

	plain := &SourceDescriptor{Key: "plain", Device: "XGM/OUT", Modules: []int{1}}
	require.Error(t, plain.Validate())
}

func TestSourceDescriptorExpandModule(t *testing.T) {
	d := &SourceDescriptor{Device: "DET/*/OUT", Modules: []int{0, 1}}
	assert.Equal(t, "DET/0/OUT", d.ExpandModule(0))
	assert.Equal(t, "DET/7/OUT", d.ExpandModule(7))
}

func TestCatalogStableOrderAndModuleIndices(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&SourceDescriptor{Key: "b", Device: "XGM/OUT"}))
	require.NoError(t, c.Add(&SourceDescriptor{Key: "a", Device: "DET/*/OUT", Modules: []int{0, 1}}))
	require.NoError(t, c.Add(&SourceDescriptor{Key: "c", Device: "DET2/*/OUT", Modules: []int{1, 2}}))

	assert.Equal(t, []string{"b", "a", "c"}, c.Keys())
	assert.ElementsMatch(t, []int{0, 1, 2}, c.AllModuleIndices())
}

func TestCatalogSnapshotIsIndependentCopy(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&SourceDescriptor{Key: "a", Device: "XGM/OUT"}))

	snap := c.Snapshot()
	d, _ := snap.Get("a")
	d.Property = "mutated"

	orig, _ := c.Get("a")
	assert.NotEqual(t, "mutated", orig.Property)
}

func TestPulseSlicerIndices(t *testing.T) {
	all := NewPulseSlicer(nil, nil, 0)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, all.Indices(5))

	two := 2
	six := 6
	bounded := NewPulseSlicer(&two, &six, 2)
	assert.Equal(t, []int{2, 4}, bounded.Indices(8))

	negBegin := -2
	tail := NewPulseSlicer(&negBegin, nil, 1)
	assert.Equal(t, []int{3, 4}, tail.Indices(5))
}

func TestAcceptanceRangeContains(t *testing.T) {
	r := AcceptanceRange{Low: 1, High: 2}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(0.99))
}
