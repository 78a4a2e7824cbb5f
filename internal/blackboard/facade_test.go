package blackboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedFacade(t *testing.T) *Facade {
	t.Helper()
	f := NewFacade(New())
	require.Equal(t, 0, f.Start(nil, ""))
	t.Cleanup(func() { f.Stop() })
	return f
}

func TestFacadeStringTwoCallSizing(t *testing.T) {
	f := newStartedFacade(t)
	require.Equal(t, 0, f.SetString("k", "hi"))

	need := f.GetString("k", nil)
	assert.Equal(t, len("hi")+1, need)

	buf := make([]byte, need)
	n := f.GetString("k", buf)
	assert.Equal(t, need, n)
	assert.Equal(t, "hi\x00", string(buf))
}

func TestFacadeStringTooSmallBufferReturnsRequiredLength(t *testing.T) {
	f := newStartedFacade(t)
	require.Equal(t, 0, f.SetString("k", "hello"))

	buf := make([]byte, 2)
	n := f.GetString("k", buf)
	assert.Equal(t, len("hello")+1, n)
}

func TestFacadeGetOnWrongKindReturnsNegative(t *testing.T) {
	f := newStartedFacade(t)
	require.Equal(t, 0, f.SetString("k", "v"))

	var out int32
	assert.Negative(t, f.GetInt("k", &out))
}

func TestFacadeCapabilityTableHasEveryCapability(t *testing.T) {
	f := newStartedFacade(t)
	table := f.CapabilityTable()

	for _, name := range []string{
		CapStart, CapStop, CapReset, CapSize,
		CapGetString, CapSetString,
		CapGetInt, CapSetInt,
		CapGetFloat, CapSetFloat,
		CapGetDouble, CapSetDouble,
		CapGetBool, CapSetBool,
		CapAsJSONSchema, CapSubscribe, CapUnsubscribe,
	} {
		_, ok := table.Get(name)
		assert.True(t, ok, "missing capability %s", name)
	}
}

func TestFacadeSubscribeRejectsNilCallback(t *testing.T) {
	f := newStartedFacade(t)
	assert.Negative(t, f.Subscribe("k", "c", nil, nil))
}
