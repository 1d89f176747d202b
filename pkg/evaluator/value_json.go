package evaluator

import (
	"encoding/json"
)

// Binding is a single name/value pair of a Snapshot.
type Binding struct {
	Name  string
	Value Value
}

// Snapshot is an ordered copy of an environment.
type Snapshot []Binding

// Lookup returns the value bound to name in the snapshot.
func (s Snapshot) Lookup(name string) (Value, bool) {
	for _, b := range s {
		if b.Name == name {
			return b.Value, true
		}
	}
	return nil, false
}

// ValueToJSON marshals a Value to JSON: integers become numbers and
// booleans become true/false.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case IntValue:
		return val.Value
	case BoolValue:
		return val.Value
	}
	return nil
}

func (v IntValue) MarshalJSON() ([]byte, error)  { return ValueToJSON(v) }
func (v BoolValue) MarshalJSON() ([]byte, error) { return ValueToJSON(v) }

// MarshalJSON renders the snapshot as an object whose keys keep the
// snapshot order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, b := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(b.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		valBytes, err := ValueToJSON(b.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
