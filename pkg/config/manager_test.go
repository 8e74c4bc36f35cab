package config

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSection is a test implementation of the Section interface
type mockSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
}

func (m *mockSection) ID() string                                { return m.id }
func (m *mockSection) Title() string                             { return "Mock " + m.id }
func (m *mockSection) Description() string                       { return "mock section" }
func (m *mockSection) Data() map[string]interface{}              { return m.data }
func (m *mockSection) SetData(data map[string]interface{}) error { m.data = data; return nil }
func (m *mockSection) Validate() error                           { return m.validateErr }
func (m *mockSection) Reset()                                    { m.data = make(map[string]interface{}) }

// mockStore is a test implementation of the Store interface
type mockStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saved    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]interface{})}
}

func (m *mockStore) Load() error { return m.loadErr }

func (m *mockStore) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved++
	return nil
}

func (m *mockStore) GetSection(sectionID string) (map[string]interface{}, error) {
	return copySection(m.sections[sectionID]), nil
}

func (m *mockStore) SetSection(sectionID string, data map[string]interface{}) error {
	m.sections[sectionID] = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	t.Run("keeps registration order", func(t *testing.T) {
		manager := NewManager(newMockStore())
		for _, id := range []string{"first", "second", "third"} {
			require.NoError(t, manager.RegisterSection(&mockSection{id: id}))
		}

		sections := manager.GetSections()
		require.Len(t, sections, 3)
		assert.Equal(t, "first", sections[0].ID())
		assert.Equal(t, "third", sections[2].ID())
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		manager := NewManager(newMockStore())
		require.NoError(t, manager.RegisterSection(&mockSection{id: "dup"}))
		assert.Error(t, manager.RegisterSection(&mockSection{id: "dup"}))
	})

	t.Run("concurrent registration", func(t *testing.T) {
		manager := NewManager(newMockStore())
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = manager.RegisterSection(&mockSection{id: fmt.Sprintf("section%d", i)})
			}(i)
		}
		wg.Wait()
		assert.Len(t, manager.GetSections(), 10)
	})
}

func TestManager_GetSection(t *testing.T) {
	manager := NewManager(newMockStore())
	require.NoError(t, manager.RegisterSection(&mockSection{id: "test"}))

	section, ok := manager.GetSection("test")
	require.True(t, ok)
	assert.Equal(t, "test", section.ID())

	_, ok = manager.GetSection("nonexistent")
	assert.False(t, ok)
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("pushes stored data into sections", func(t *testing.T) {
		store := newMockStore()
		store.sections["test"] = map[string]interface{}{"key": "value"}

		manager := NewManager(store)
		section := &mockSection{id: "test", data: map[string]interface{}{}}
		require.NoError(t, manager.RegisterSection(section))

		require.NoError(t, manager.LoadAll())
		assert.Equal(t, "value", section.data["key"])
	})

	t.Run("skips sections without stored data", func(t *testing.T) {
		manager := NewManager(newMockStore())
		section := &mockSection{id: "test", data: map[string]interface{}{"keep": true}}
		require.NoError(t, manager.RegisterSection(section))

		require.NoError(t, manager.LoadAll())
		assert.Equal(t, true, section.data["keep"])
	})

	t.Run("rejects invalid stored data", func(t *testing.T) {
		store := newMockStore()
		store.sections["test"] = map[string]interface{}{"key": "value"}

		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "test", validateErr: fmt.Errorf("bad value")}))

		err := manager.LoadAll()
		assert.ErrorContains(t, err, "section test is invalid")
	})

	t.Run("surfaces store errors", func(t *testing.T) {
		store := newMockStore()
		store.loadErr = fmt.Errorf("load error")
		assert.Error(t, NewManager(store).LoadAll())
	})
}

func TestManager_SaveAll(t *testing.T) {
	t.Run("writes every section", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "a", data: map[string]interface{}{"k": "v"}}))

		require.NoError(t, manager.SaveAll())
		assert.Equal(t, "v", store.sections["a"]["k"])
		assert.Equal(t, 1, store.saved)
	})

	t.Run("validates before writing", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "a", validateErr: fmt.Errorf("bad")}))

		assert.Error(t, manager.SaveAll())
		assert.Equal(t, 0, store.saved)
	})

	t.Run("rejects invalid stored data", func(t *testing.T) {
		store := newMockStore()
		store.sections["test"] = map[string]interface{}{"key": "value"}

		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "test", validateErr: fmt.Errorf("bad value")}))

		err := manager.LoadAll()
		assert.ErrorContains(t, err, "section test is invalid")
	})

	t.Run("surfaces store errors", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = fmt.Errorf("save error")
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "a"}))

		assert.Error(t, manager.SaveAll())
	})
}

func TestManager_ResetAll(t *testing.T) {
	manager := NewManager(newMockStore())
	section := &mockSection{id: "a", data: map[string]interface{}{"k": "v"}}
	require.NoError(t, manager.RegisterSection(section))

	manager.ResetAll()
	assert.Empty(t, section.data)
}
