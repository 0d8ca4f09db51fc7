package serialization

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/schema"
)

func TestNewValidation(t *testing.T) {
	_, err := New(nil, CompressionNone)
	assert.Error(t, err)

	_, err = New(MsgpackCodec{}, Compression("brotli"))
	assert.ErrorContains(t, err, "unknown compression")

	s, err := New(JSONCodec{}, "")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestDefaultRoundTrip(t *testing.T) {
	s := Default()

	original := &checkpoint.Checkpoint{
		SessionKey: "session-1",
		State: schema.State{
			"input":   "hello world",
			"history": []any{"a", "b", "c"},
			"done":    true,
		},
		Step:      12,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	data, err := s.Serialize(original)
	require.NoError(t, err)

	var decoded checkpoint.Checkpoint
	require.NoError(t, s.Deserialize(data, &decoded))
	assert.Equal(t, "session-1", decoded.SessionKey)
	assert.Equal(t, 12, decoded.Step)
	assert.Equal(t, "hello world", decoded.State.GetString("input"))
	assert.Equal(t, []any{"a", "b", "c"}, decoded.State.GetSlice("history"))
	assert.True(t, decoded.State.GetBool("done"))
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestJSONPayloadIsReadable(t *testing.T) {
	s, err := New(JSONCodec{}, CompressionNone)
	require.NoError(t, err)

	data, err := s.Serialize(schema.State{"input": "visible"})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte(`"visible"`)))
}

func TestCompressionShrinksRepetitivePayloads(t *testing.T) {
	plain, err := New(MsgpackCodec{}, CompressionNone)
	require.NoError(t, err)

	big := schema.State{"blob": strings.Repeat("the same sentence over and over ", 200)}

	raw, err := plain.Serialize(big)
	require.NoError(t, err)

	for _, compression := range []Compression{CompressionGzip, CompressionZstd} {
		t.Run(string(compression), func(t *testing.T) {
			s, err := New(MsgpackCodec{}, compression)
			require.NoError(t, err)

			packed, err := s.Serialize(big)
			require.NoError(t, err)
			assert.Less(t, len(packed), len(raw))

			var decoded schema.State
			require.NoError(t, s.Deserialize(packed, &decoded))
			assert.Equal(t, big.GetString("blob"), decoded.GetString("blob"))
		})
	}
}

func TestDeserializeCorruptData(t *testing.T) {
	s := Default()
	var out schema.State
	assert.Error(t, s.Deserialize([]byte("not a zstd frame"), &out))
}
