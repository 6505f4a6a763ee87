package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireFormatRoundTrip(t *testing.T) {
	var wf WireFormat
	original := NewUnboundedRequest("v1", "", 7)

	line := wf.Encode(original)
	decoded, err := wf.Decode(line)
	require.NoError(t, err)

	assert.Equal(t, original.Source, decoded.Source)
	assert.Equal(t, original.Target, decoded.Target)
	assert.Equal(t, original.ReturnNode, decoded.ReturnNode)
	assert.Equal(t, original.StartTimeFirst, decoded.StartTimeFirst)
	assert.Equal(t, original.EndTimeSecond, decoded.EndTimeSecond)
}

func TestWireFormatDecodeRejectsWrongFieldCount(t *testing.T) {
	var wf WireFormat
	_, err := wf.Decode("too,few,fields")
	assert.Error(t, err)
}
