package sfd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssteam/steamfetch/internal/common"
)

func sampleQueue() *Queue {
	return &Queue{
		AppID: 400,
		Depots: []DepotRecord{
			{DepotID: 401, ManifestID: 111, Key: []byte{0xde, 0xad, 0xbe, 0xef}, Payload: []byte("base payload")},
			{DepotID: 402, ManifestID: 222, Key: []byte{0x01, 0x02}, Payload: []byte{0x00, 0xff, 0x10}},
		},
	}
}

func TestWriteParse_RoundTrip(t *testing.T) {
	q := sampleQueue()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, q))
	first := buf.String()

	got, err := Parse(strings.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, q, got)

	// Re-serializing reproduces the descriptor byte for byte, sentinel included.
	var buf2 bytes.Buffer
	require.NoError(t, Write(&buf2, got))
	assert.Equal(t, first, buf2.String())
}

func TestWrite_EmptyQueue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Queue{AppID: 10}))
	assert.Equal(t, "10\nEndOfFile\n", buf.String())

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), got.AppID)
	assert.Empty(t, got.Depots)
}

func TestParse_PreservesDepotOrder(t *testing.T) {
	// Higher depot id first: order of appearance must win, not numeric order.
	q := &Queue{AppID: 1, Depots: []DepotRecord{
		{DepotID: 900, ManifestID: 1, Key: []byte{1}, Payload: []byte("a")},
		{DepotID: 100, ManifestID: 2, Key: []byte{2}, Payload: []byte("b")},
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, q))

	got, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, got.Depots, 2)
	assert.Equal(t, uint32(900), got.Depots[0].DepotID)
	assert.Equal(t, uint32(100), got.Depots[1].DepotID)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "empty input", in: "", want: common.ErrMalformedDescriptor},
		{name: "bad app id", in: "abc\nEndOfFile\n", want: common.ErrMalformedDescriptor},
		{name: "missing sentinel", in: "400\n", want: common.ErrMalformedDescriptor},
		{name: "truncated record", in: "400\n401\n111\n", want: common.ErrMalformedDescriptor},
		{name: "bad depot id", in: "400\nxyz\n111\nff\naGk=\nEndOfFile\n", want: common.ErrMalformedDescriptor},
		{name: "bad manifest id", in: "400\n401\nnope\nff\naGk=\nEndOfFile\n", want: common.ErrMalformedDescriptor},
		{name: "bad hex key", in: "400\n401\n111\nzz\naGk=\nEndOfFile\n", want: common.ErrMalformedDescriptor},
		{name: "bad base64 payload", in: "400\n401\n111\nff\n!!!\nEndOfFile\n", want: common.ErrMalformedDescriptor},
		{
			name: "duplicate depot",
			in:   "400\n401\n111\nff\naGk=\n401\n222\nff\naGk=\nEndOfFile\n",
			want: common.ErrDuplicateDepot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}
