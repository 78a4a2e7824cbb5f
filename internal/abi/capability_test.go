package abi

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityNameRoundTrips(t *testing.T) {
	c := NewCapability("blackboard_set_string", nil)
	assert.Equal(t, "blackboard_set_string", c.Name())
}

func TestCapabilityNameTruncatesToBufferWithNul(t *testing.T) {
	long := strings.Repeat("x", NameLen*2)
	c := NewCapability(long, nil)
	assert.Len(t, c.Name(), NameLen-1)
	assert.Equal(t, long[:NameLen-1], c.Name())
}

func TestCapabilityInvokeThroughStoredFn(t *testing.T) {
	c := NewCapability("adder", func(a, b int) int { return a + b })
	fn, ok := c.Fn.(func(int, int) int)
	require.True(t, ok)
	assert.Equal(t, 5, fn(2, 3))
}

func TestTableAddRespectsCapacity(t *testing.T) {
	var table CapabilityTable
	for i := 0; i < TableCapacity; i++ {
		assert.True(t, table.Add(NewCapability(fmt.Sprintf("cap_%d", i), nil)))
	}
	assert.Equal(t, TableCapacity, table.Len())

	// The 21st entry is silently discarded, not stored.
	assert.False(t, table.Add(NewCapability("overflow", nil)))
	assert.Equal(t, TableCapacity, table.Len())
	_, ok := table.Get("overflow")
	assert.False(t, ok)
}

func TestTableGetIsCaseSensitiveExactMatch(t *testing.T) {
	var table CapabilityTable
	table.Add(NewCapability("blackboard_size", nil))

	_, ok := table.Get("blackboard_size")
	assert.True(t, ok)
	_, ok = table.Get("Blackboard_Size")
	assert.False(t, ok)
	_, ok = table.Get("blackboard_siz")
	assert.False(t, ok)
}

func TestTableAllPreservesInsertionOrder(t *testing.T) {
	var table CapabilityTable
	table.Add(NewCapability("first", nil))
	table.Add(NewCapability("second", nil))
	table.Add(NewCapability("third", nil))

	all := table.All()
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Name())
	assert.Equal(t, "second", all[1].Name())
	assert.Equal(t, "third", all[2].Name())
}

func TestParseDescriptor(t *testing.T) {
	text := `{
		"name": "blackboard",
		"version": "0.1.0",
		"library_type": "Service",
		"provides": [{"capability": "blackboard_set_string", "entry": "BlackboardSetString"}],
		"requires": []
	}`
	d, err := ParseDescriptor(text)
	require.NoError(t, err)
	assert.Equal(t, "blackboard", d.Name)
	assert.Equal(t, LibraryTypeService, d.LibraryType)

	entry, ok := d.ProvisionEntry("blackboard_set_string")
	require.True(t, ok)
	assert.Equal(t, "BlackboardSetString", entry)

	_, ok = d.ProvisionEntry("missing")
	assert.False(t, ok)
}

func TestParseDescriptorRejectsInvalidJSON(t *testing.T) {
	_, err := ParseDescriptor("{not json")
	assert.Error(t, err)
}
