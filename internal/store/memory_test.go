package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Get("svc/FrameworkId")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SetThenGet(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("svc/FrameworkId", []byte("F")))
	v, err := m.Get("svc/FrameworkId")
	require.NoError(t, err)
	assert.Equal(t, []byte("F"), v)
}

func TestMemory_GetChildrenReturnsImmediateSegmentOnly(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("svc/Tasks/a/info", []byte("x")))
	require.NoError(t, m.Set("svc/Tasks/a/status", []byte("y")))
	require.NoError(t, m.Set("svc/Tasks/b/info", []byte("z")))

	children, err := m.GetChildren("svc/Tasks")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, children)
}

func TestMemory_SetManyIsAllOrNothingInEffect(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetMany(map[string][]byte{
		"svc/Tasks/a/info":   []byte("x"),
		"svc/Tasks/a/status": []byte("y"),
	}))
	v, err := m.Get("svc/Tasks/a/status")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), v)
}

func TestMemory_DeleteAllRemovesPrefixedEntries(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("svc/FrameworkId", []byte("F")))
	require.NoError(t, m.Set("svc/Tasks/a/info", []byte("x")))
	require.NoError(t, m.Set("other/FrameworkId", []byte("G")))

	require.NoError(t, m.DeleteAll("svc"))

	_, err := m.Get("svc/FrameworkId")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get("svc/Tasks/a/info")
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := m.Get("other/FrameworkId")
	require.NoError(t, err)
	assert.Equal(t, []byte("G"), v, "DeleteAll must not touch paths outside its prefix")
}
