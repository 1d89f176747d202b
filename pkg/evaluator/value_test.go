package evaluator_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhud/simplesyntax/pkg/evaluator"
)

func TestValueRendering(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		text     string
		typeName string
	}{
		{evaluator.NewInt(0), "0", "int"},
		{evaluator.NewInt(-42), "-42", "int"},
		{evaluator.NewInt(math.MaxInt64), "9223372036854775807", "int"},
		{evaluator.NewBool(true), "true", "bool"},
		{evaluator.NewBool(false), "false", "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.value.String())
			assert.Equal(t, tt.typeName, tt.value.TypeName())
			assert.Equal(t, tt.text, evaluator.ValueToJSONString(tt.value))
		})
	}
}

func TestEnv(t *testing.T) {
	env := evaluator.NewEnv()
	assert.False(t, env.IsDeclared("x"))
	assert.False(t, env.Set("x", evaluator.NewInt(1)), "set before declare")

	require.True(t, env.Declare("x"))
	assert.False(t, env.Declare("x"), "second declare")

	v, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, evaluator.Zero, v)

	assert.True(t, env.Set("x", evaluator.NewBool(true)))
	v, _ = env.Get("x")
	assert.Equal(t, evaluator.NewBool(true), v)

	// A failed redeclaration leaves the value alone.
	env.Declare("x")
	v, _ = env.Get("x")
	assert.Equal(t, evaluator.NewBool(true), v)

	_, ok = env.Get("y")
	assert.False(t, ok)

	env.Declare("a")
	assert.Equal(t, 2, env.Len())
	assert.Equal(t, []string{"a", "x"}, env.Names())
}

func TestSnapshotJSON(t *testing.T) {
	env := evaluator.NewEnv()
	env.Declare("b")
	env.Declare("a")
	env.Set("b", evaluator.NewBool(false))
	env.Set("a", evaluator.NewInt(-3))

	out, err := json.Marshal(env.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, `{"a":-3,"b":false}`, string(out))

	out, err = json.Marshal(evaluator.NewEnv().Snapshot())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestValueMarshalInsideMaps(t *testing.T) {
	out, err := json.Marshal(map[string]any{"value": evaluator.NewInt(5), "flag": evaluator.NewBool(true)})
	require.NoError(t, err)
	assert.Equal(t, `{"flag":true,"value":5}`, string(out))
}
