package render

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/revelaction/signpose/timeline"
)

// MaxMessageSize bounds the length prefix accepted by ReadMsgpack.
const MaxMessageSize = 256 << 20

// MsgpackRenderer writes timelines as msgpack messages framed by a 4 byte big
// endian length prefix, so that several timelines can share one stream.
type MsgpackRenderer struct {
	W io.Writer
}

func NewMsgpackRenderer(w io.Writer) *MsgpackRenderer {
	return &MsgpackRenderer{W: w}
}

func (r *MsgpackRenderer) Render(tl timeline.Timeline) error {
	data, err := msgpack.Marshal(&tl)
	if err != nil {
		return fmt.Errorf("failed to marshal msgpack timeline: %w", err)
	}

	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(len(data)))

	if _, err := r.W.Write(prefix); err != nil {
		return fmt.Errorf("failed to write length prefix: %w", err)
	}

	if _, err := r.W.Write(data); err != nil {
		return fmt.Errorf("failed to write msgpack data: %w", err)
	}

	return nil
}

// ReadMsgpack reads one length prefixed timeline from r. It returns io.EOF
// when the stream ends before a new message.
func ReadMsgpack(r io.Reader) (timeline.Timeline, error) {
	var tl timeline.Timeline

	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return tl, err
	}

	n := binary.BigEndian.Uint32(prefix)
	if n > MaxMessageSize {
		return tl, fmt.Errorf("msgpack message too large: %d bytes", n)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return tl, fmt.Errorf("failed to read msgpack data: %w", err)
	}

	if err := msgpack.Unmarshal(data, &tl); err != nil {
		return tl, fmt.Errorf("failed to unmarshal msgpack timeline: %w", err)
	}

	return tl, nil
}

// compile-time interface check
var _ Renderer = (*MsgpackRenderer)(nil)
