package brackets

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for n := 1; n <= 16; n++ {
		rankings := make(map[string]float64, n)
		for i := 0; i < n; i++ {
			rankings[string(rune('A'+i))] = float64(i)
		}
		tree, err := BuildBracket(n, rankings, rng)
		require.NoError(t, err)
		ResolveByes(tree)

		restored, err := Deserialize(Serialize(tree))
		require.NoError(t, err)
		assert.True(t, Equal(tree, restored), "round trip with %d leaves", n)

		data, err := json.Marshal(tree)
		require.NoError(t, err)
		decoded, err := UnmarshalBracket(data)
		require.NoError(t, err)
		assert.True(t, Equal(tree, decoded), "json round trip with %d leaves", n)
	}
}

func TestDeserializeSetsParents(t *testing.T) {
	tree, err := Deserialize(Mapping{
		Left:  &Mapping{Value: str("A")},
		Right: &Mapping{Left: &Mapping{Value: str("B")}, Right: &Mapping{Value: str("C")}},
	})
	require.NoError(t, err)

	root := tree.Root()
	assert.Nil(t, root.Parent())
	assert.Same(t, root, root.Left.Parent())
	assert.Same(t, root.Right, root.Right.Right.Parent())
	assert.Equal(t, 2, root.Right.Left.Depth())
}

func TestSerializeJSONShape(t *testing.T) {
	tree, err := Deserialize(Mapping{
		Left:  &Mapping{Value: str("A")},
		Right: &Mapping{Value: str("B")},
	})
	require.NoError(t, err)

	data, err := json.Marshal(Serialize(tree))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"value": null,
		"left": {"value": "A", "left": null, "right": null},
		"right": {"value": "B", "left": null, "right": null}
	}`, string(data))
}

func TestSerializeDoesNotAlias(t *testing.T) {
	tree, err := Deserialize(Mapping{Left: &Mapping{Value: str("A")}, Right: &Mapping{Value: str("B")}})
	require.NoError(t, err)

	m := Serialize(tree)
	tree.Root().setValue("A")
	assert.Nil(t, m.Value)

	clone := m.Clone()
	*clone.Left.Value = "Z"
	assert.Equal(t, "A", *m.Left.Value)
}

func TestDeserializeMalformed(t *testing.T) {
	_, err := Deserialize(Mapping{Left: &Mapping{Value: str("A")}})
	assert.ErrorIs(t, err, ErrMalformedBracket)

	_, err = Deserialize(Mapping{
		Left:  &Mapping{Right: &Mapping{}},
		Right: &Mapping{},
	})
	assert.ErrorIs(t, err, ErrMalformedBracket)
}

func TestDecodeMapping(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"value": null,
		"left": {"value": "A", "left": null, "right": null},
		"right": {"value": "B"}
	}`), &raw))

	m, err := DecodeMapping(raw)
	require.NoError(t, err)
	assert.Nil(t, m.Value)
	assert.Equal(t, "A", *m.Left.Value)
	assert.Equal(t, "B", *m.Right.Value)
	assert.Nil(t, m.Right.Left)
}

func TestDecodeMappingMalformed(t *testing.T) {
	cases := map[string]string{
		"missing value":  `{"left": null, "right": null}`,
		"numeric value":  `{"value": 3}`,
		"one child":      `{"value": null, "left": {"value": "A"}}`,
		"child not obj":  `{"value": null, "left": "A", "right": "B"}`,
		"deep bad value": `{"value": null, "left": {"value": "A"}, "right": {"value": true}}`,
		"deep no value":  `{"value": null, "left": {"value": "A"}, "right": {}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var raw map[string]any
			require.NoError(t, json.Unmarshal([]byte(doc), &raw))
			_, err := DecodeMapping(raw)
			assert.ErrorIs(t, err, ErrMalformedBracket)
		})
	}
}

func TestUnmarshalBracketInvalidJSON(t *testing.T) {
	_, err := UnmarshalBracket([]byte(`{"value":`))
	assert.ErrorIs(t, err, ErrMalformedBracket)

	_, err = UnmarshalBracket([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrMalformedBracket)

	_, err = UnmarshalBracket([]byte(`null`))
	assert.ErrorIs(t, err, ErrMalformedBracket)
}
