package wizard

import (
	"sync"

	"github.com/kerem-kaynak/kolektor/internal/entity"
)

// Store holds the state of one wizard session behind a mutex. All reads get
// deep copies, all writes go through Dispatch, subscribers hear about every
// applied action.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewStore(initial State) *Store {
	if initial.Step == "" {
		initial.Step = StepUpload
	}
	if initial.Tables == nil {
		initial.Tables = []entity.TableFile{}
	}
	if initial.Relationships == nil {
		initial.Relationships = []entity.TableRelationship{}
	}
	if initial.Aggregations == nil {
		initial.Aggregations = []entity.AggregationConfig{}
	}
	return &Store{state: initial.clone()}
}

// State returns a deep copy of the current state.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Dispatch runs the action through the reducer. On success the new state is
// stored and subscribers are notified, on error the state is untouched.
func (st *Store) Dispatch(action Action) (State, error) {
	st.mu.Lock()
	next, err := reduce(st.state.clone(), action)
	if err != nil {
		st.mu.Unlock()
		return State{}, err
	}
	st.state = next
	out := next.clone()
	subs := append(([]func(State))(nil), st.subs...)
	st.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(out)
		}
	}
	return out, nil
}

// Subscribe registers fn to run after every applied action. The returned
// function removes the subscription.
func (st *Store) Subscribe(fn func(State)) func() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
	i := len(st.subs) - 1
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.subs[i] = nil
	}
}
