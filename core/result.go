package core

import "time"

// Result is the structured output an agent produces for one invocation.
//
// The workflow engine treats results as opaque except for two read points:
// the peer-review quality score inspected by the quality gate, and the
// presence of required agent names used for phase-completion checks. All
// other fields are agent-specific and flow through untouched.
//
// Results must remain serializable to plain structured data (maps, slices,
// strings, numbers) so the whole workflow state can be persisted between
// runs. Never store live handles in Data.
type Result struct {
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewResult creates a Result stamped with the current time.
func NewResult(data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{Timestamp: time.Now().UTC(), Data: data}
}

// Float returns the value under key as a float64. The second return value is
// false when the key is absent or the value is not numeric.
func (r Result) Float(key string) (float64, bool) {
	v, ok := r.Data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// String returns the value under key as a string, with ok=false when the key
// is absent or holds a non-string value.
func (r Result) String(key string) (string, bool) {
	v, ok := r.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Strings returns the value under key as a string slice. Both []string and
// []any (the shape produced by JSON round-trips) are accepted; anything else
// yields nil.
func (r Result) Strings(key string) []string {
	v, ok := r.Data[key]
	if !ok {
		return nil
	}
	switch vs := v.(type) {
	case []string:
		out := make([]string, len(vs))
		copy(out, vs)
		return out
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a copy of the result with a shallowly copied Data map.
func (r Result) Clone() Result {
	data := make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		data[k] = v
	}
	return Result{Timestamp: r.Timestamp, Data: data}
}

// Outputs maps an agent name to the ordered list of results it has produced.
// Rerunning phases replace an agent's list wholesale; all other phases append.
type Outputs map[string][]Result

// Latest returns the most recent result recorded for the named agent.
func (o Outputs) Latest(name string) (Result, bool) {
	rs := o[name]
	if len(rs) == 0 {
		return Result{}, false
	}
	return rs[len(rs)-1], true
}

// First returns the first result recorded for the named agent.
func (o Outputs) First(name string) (Result, bool) {
	rs := o[name]
	if len(rs) == 0 {
		return Result{}, false
	}
	return rs[0], true
}

// Has reports whether every named agent has at least one recorded result.
func (o Outputs) Has(names ...string) bool {
	for _, n := range names {
		if len(o[n]) == 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the outputs map.
func (o Outputs) Clone() Outputs {
	clone := make(Outputs, len(o))
	for name, rs := range o {
		cp := make([]Result, len(rs))
		for i, r := range rs {
			cp[i] = r.Clone()
		}
		clone[name] = cp
	}
	return clone
}
