package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(RaiseTo(300))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"raise","amount":300}`, string(data))

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"check"}`), &a))
	assert.Equal(t, Call(), a)

	require.Error(t, json.Unmarshal([]byte(`{"kind":"fold","amount":10}`), &a))
	require.Error(t, json.Unmarshal([]byte(`{"kind":"shove"}`), &a))
	require.Error(t, json.Unmarshal([]byte(`{}`), &a))
}

func TestActionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "fold", Fold().String())
	assert.Equal(t, "call", Call().String())
	assert.Equal(t, "raise to 40", RaiseTo(40).String())
	assert.Equal(t, "flop", Flop.String())
	assert.Equal(t, 4, Turn.BoardSize())
}
