package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// HintFunction is the Lua global a room script defines to supply hints.
const HintFunction = "hint"

// Script owns one sandboxed LState loaded from a room's script file and
// exposes its hook functions. Hooks receive a single state table and must be
// pure: same state in, same answer out.
//
// Script is safe for concurrent use; a mutex serializes calls into the
// single-threaded LState.
type Script struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	path   string
	logger *zap.Logger
}

// Load executes the script file in a fresh sandboxed VM and returns a
// Script exposing its globals. Loading itself runs under the opcode budget,
// so a top-level infinite loop fails here rather than at first call.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil Script, or an error if the file cannot be
// read or executed. The caller must Close the Script when done.
func Load(path string, instLimit int, logger *zap.Logger) (*Script, error) {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	L := NewSandboxedState()
	armBudget(L, limit)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	logger.Debug("room script loaded",
		zap.String("path", path),
		zap.Int("instruction_limit", limit),
	)
	return &Script{
		state:  L,
		limit:  limit,
		path:   path,
		logger: logger,
	}, nil
}

// Close releases the underlying VM. The Script must not be used afterwards.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// Predicate calls the named Lua global with the state table and interprets
// the result as a boolean (Lua truthiness: nil and false are false).
//
// Postcondition: Returns an error when the function is not defined, errors
// at runtime, or exceeds the opcode budget; callers treat errors as false.
func (s *Script) Predicate(name string, state map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, found, err := s.call(name, state)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("scripting: predicate %q is not defined in %q", name, s.path)
	}
	return lua.LVAsBool(ret), nil
}

// Hint calls the script's hint function with the state table. ok is false
// when the function is absent or returns nil, signalling the caller to fall
// back to the authored hint ladder.
func (s *Script) Hint(state map[string]any) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, found, err := s.call(HintFunction, state)
	if err != nil {
		return "", false, err
	}
	if !found || ret == lua.LNil {
		return "", false, nil
	}
	str, ok := ret.(lua.LString)
	if !ok {
		return "", false, fmt.Errorf("scripting: %s in %q returned %s, want string or nil",
			HintFunction, s.path, ret.Type())
	}
	return string(str), true, nil
}

// call invokes the named global under a fresh opcode budget. found is false
// when no such global function exists.
//
// Precondition: s.mu is held.
func (s *Script) call(name string, state map[string]any) (lua.LValue, bool, error) {
	if s.state == nil {
		return lua.LNil, false, fmt.Errorf("scripting: script %q is closed", s.path)
	}

	fn := s.state.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, false, nil
	}

	armBudget(s.state, s.limit)
	if err := s.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, stateTable(s.state, state)); err != nil {
		return lua.LNil, true, fmt.Errorf("scripting: calling %q: %w", name, err)
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)
	return ret, true, nil
}

// stateTable converts the Go state snapshot into a Lua table. Supported
// value types: nil, bool, int, float64, string, []string, map[string]bool,
// map[string]string, and nested map[string]any. Anything else converts to
// nil.
func stateTable(L *lua.LState, state map[string]any) *lua.LTable {
	t := L.NewTable()
	for k, v := range state {
		t.RawSetString(k, toLua(L, v))
	}
	return t
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]bool:
		t := L.NewTable()
		for k, b := range x {
			t.RawSetString(k, lua.LBool(b))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, s := range x {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case map[string]any:
		return stateTable(L, x)
	default:
		return lua.LNil
	}
}
