package decode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	foam "github.com/foam-go/foam"
)

func TestRecordingRoundTrip(t *testing.T) {
	var w Writer
	w.WriteHeader("1.0")
	w.WritePacket(42, foam.RawValues{
		"XGM": {"intensity": 3.5},
		"ROI": {"proj_x": []float64{1, 2, 3}},
	})
	w.WriteComment(42, 10, 0, "gain changed")

	rec := NewRecording(bytes.NewReader(w.Bytes()))

	r1, err := rec.Next()
	require.NoError(t, err)
	require.Equal(t, HEADER, r1.Kind)
	require.Equal(t, "1.0", r1.Header.FormatVersion)

	r2, err := rec.Next()
	require.NoError(t, err)
	require.Equal(t, PACKET, r2.Kind)
	require.Equal(t, 3.5, r2.Packet.Values["XGM"]["intensity"])
	require.Equal(t, []float64{1, 2, 3}, r2.Packet.Values["ROI"]["proj_x"])
	require.Equal(t, int64(42), r2.Packet.Metadata["XGM"]["timestamp.tid"])

	r3, err := rec.Next()
	require.NoError(t, err)
	require.Equal(t, COMMENT, r3.Kind)
	require.Equal(t, "gain changed", r3.Comment.Value)
	require.Equal(t, int64(42), r3.Comment.TrainID)

	_, err = rec.Next()
	require.Error(t, err)
}

func TestParametersRec(t *testing.T) {
	var body bytes.Buffer
	// Build the body by hand: header, then two length-prefixed "key=value" params.
	writeParam := func(buf *bytes.Buffer, s string) {
		var lenBuf [2]byte
		lenBuf[0] = byte(len(s) >> 8)
		lenBuf[1] = byte(len(s))
		buf.Write(lenBuf[:])
		buf.WriteString(s)
	}

	var hdr bytes.Buffer
	writeInt32 := func(buf *bytes.Buffer, v int32) {
		buf.WriteByte(byte(v >> 24))
		buf.WriteByte(byte(v >> 16))
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}
	writeInt16 := func(buf *bytes.Buffer, v int16) {
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}
	writeInt32(&hdr, 100)
	writeInt32(&hdr, 0)
	writeInt16(&hdr, 2)

	body.Write(hdr.Bytes())
	writeParam(&body, "applied_roll_bias=0.03")
	writeParam(&body, "recording_enabled=yes")

	params := ParametersRec(body.Bytes())
	require.InDelta(t, 0.03, params["applied_roll_bias"], 1e-9)
	require.Equal(t, true, params["recording_enabled"])
}
