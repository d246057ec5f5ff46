package wizard

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

func TestStoreRejectedActionLeavesStateUntouched(t *testing.T) {
	store := NewStore(State{ProjectID: "p1", Name: "demo"})

	_, err := store.Dispatch(SetPrimaryTable{TableName: "missing"})
	require.Error(t, err)

	state := store.State()
	assert.Empty(t, state.Tables)
	assert.Equal(t, StepUpload, state.Step)
}

func TestStoreStateIsolation(t *testing.T) {
	store := NewStore(State{ProjectID: "p1", Name: "demo"})
	_, err := store.Dispatch(AddTables{Tables: []entity.TableFile{testTable("t1", "customers", "id", "age")}})
	require.NoError(t, err)

	state := store.State()
	state.Tables[0].Name = "mutated"
	state.Tables[0].Columns[0].Name = "mutated"
	state.Name = "mutated"

	fresh := store.State()
	assert.Equal(t, "customers", fresh.Tables[0].Name)
	assert.Equal(t, "id", fresh.Tables[0].Columns[0].Name)
	assert.Equal(t, "demo", fresh.Name)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(State{ProjectID: "p1", Name: "demo"})

	var notified []Step
	unsubscribe := store.Subscribe(func(s State) {
		notified = append(notified, s.Step)
	})

	_, err := store.Dispatch(AddTables{Tables: []entity.TableFile{testTable("t1", "customers", "id")}})
	require.NoError(t, err)
	_, err = store.Dispatch(Advance{})
	require.NoError(t, err)

	_, err = store.Dispatch(Advance{})
	require.NoError(t, err)

	// Rejected actions do not notify.
	_, err = store.Dispatch(SetPrimaryTable{TableName: "missing"})
	require.Error(t, err)

	assert.Equal(t, []Step{StepUpload, StepIdentify, StepRelationships}, notified)

	unsubscribe()
	_, err = store.Dispatch(Back{})
	require.NoError(t, err)
	assert.Len(t, notified, 3, "unsubscribed listeners stay quiet")
}

func TestStoreConcurrentDispatch(t *testing.T) {
	store := NewStore(State{ProjectID: "p1", Name: "demo"})

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := store.Dispatch(AddTables{Tables: []entity.TableFile{
				testTable(fmt.Sprintf("t%d", i), fmt.Sprintf("table%d", i), "id"),
			}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state := store.State()
	assert.Len(t, state.Tables, workers)

	primaries := 0
	for _, table := range state.Tables {
		if table.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}
