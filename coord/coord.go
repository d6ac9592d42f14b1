// Package coord holds the hand pose data model: joints, pose entries and the
// coordinate dictionary they are looked up in.
package coord

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	LeftHandKey  = "Left Hand Coordinates"
	RightHandKey = "Right Hand Coordinates"
)

// Vec3 is a 3D point.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// UnmarshalJSON requires exactly three numbers.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var f []float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	if len(f) != 3 {
		return fmt.Errorf("joint vector needs 3 components, got %d", len(f))
	}

	copy(v[:], f)
	return nil
}

// Joint is a named keypoint of a hand skeleton.
type Joint struct {
	Name string `json:"name" msgpack:"name"`
	Pos  Vec3   `json:"pos" msgpack:"pos"`
}

// Joints is an ordered joint map. The order is the order of the keys in the
// dictionary file and gives each joint its index in the bone topology.
type Joints []Joint

// UnmarshalJSON decodes a JSON object {joint -> [x,y,z]} keeping the key
// order.
func (js *Joints) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}

	if t == nil {
		*js = nil
		return nil
	}

	if d, ok := t.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("joint map must be an object, got %v", t)
	}

	joints := Joints{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}

		var pos Vec3
		if err := dec.Decode(&pos); err != nil {
			return fmt.Errorf("joint %v: %w", kt, err)
		}

		joints = append(joints, Joint{Name: kt.(string), Pos: pos})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*js = joints
	return nil
}

// MarshalJSON encodes the joints back as an ordered JSON object.
func (js Joints) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, j := range js {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(j.Name)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		pos, err := json.Marshal([3]float64(j.Pos))
		if err != nil {
			return nil, err
		}

		buf.Write(pos)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Kind tags the variant of an Entry.
type Kind int

const (
	// WholeWord is a two hand pose of a whole word sign. Either hand may be
	// empty; both empty means no known pose.
	WholeWord Kind = iota

	// Letter is a single hand fingerspelling pose.
	Letter

	// Blank stands for a character with no known pose.
	Blank
)

func (k Kind) String() string {
	switch k {
	case WholeWord:
		return "word"
	case Letter:
		return "letter"
	case Blank:
		return "blank"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "word":
		*k = WholeWord
	case "letter":
		*k = Letter
	case "blank":
		*k = Blank
	default:
		return fmt.Errorf("unknown entry kind %q", text)
	}

	return nil
}

// Entry is one keyframe of a sign.
type Entry struct {
	Kind Kind `msgpack:"kind"`

	// Left and Right are the hands of a WholeWord entry
	Left  Joints `msgpack:"left,omitempty"`
	Right Joints `msgpack:"right,omitempty"`

	// Hand is the single hand of a Letter entry
	Hand Joints `msgpack:"hand,omitempty"`
}

// Default returns the blank entry substituted for unknown characters.
func Default() Entry {
	return Entry{Kind: Blank}
}

// IsEmpty reports whether the entry carries no joint at all.
func (e Entry) IsEmpty() bool {
	return len(e.Left) == 0 && len(e.Right) == 0 && len(e.Hand) == 0
}

// Hands returns the non empty joint lists of the entry.
func (e Entry) Hands() []Joints {
	var hands []Joints
	for _, h := range []Joints{e.Left, e.Right, e.Hand} {
		if len(h) > 0 {
			hands = append(hands, h)
		}
	}

	return hands
}

// UnmarshalJSON decodes a pose record of the dictionary file. A record with
// both hand keys is a WholeWord pose, any other object is a Letter pose. A
// record with a single hand key has no joint vectors and decodes as a Letter
// pose without joints.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	left, hasLeft := keys[LeftHandKey]
	right, hasRight := keys[RightHandKey]

	switch {
	case hasLeft && hasRight:
	case hasLeft || hasRight:
		*e = Entry{Kind: Letter}
		return nil
	default:
		var hand Joints
		if err := json.Unmarshal(data, &hand); err != nil {
			return err
		}

		*e = Entry{Kind: Letter, Hand: hand}
		return nil
	}

	out := Entry{Kind: WholeWord}
	if err := json.Unmarshal(left, &out.Left); err != nil {
		return fmt.Errorf("%s: %w", LeftHandKey, err)
	}

	if err := json.Unmarshal(right, &out.Right); err != nil {
		return fmt.Errorf("%s: %w", RightHandKey, err)
	}

	*e = out
	return nil
}

// MarshalJSON encodes the entry in the dictionary file format. Blank is
// written as a two hand record with both hands empty.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Kind == Letter {
		return json.Marshal(e.Hand)
	}

	left, right := e.Left, e.Right
	if left == nil {
		left = Joints{}
	}

	if right == nil {
		right = Joints{}
	}

	return json.Marshal(struct {
		Left  Joints `json:"Left Hand Coordinates"`
		Right Joints `json:"Right Hand Coordinates"`
	}{left, right})
}

// Entries is the ordered list of keyframes of a dictionary key. A single
// record in the file becomes a one element list.
type Entries []Entry

func (es *Entries) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*es = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Entry
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}

		*es = list
		return nil
	}

	var e Entry
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return err
	}

	*es = Entries{e}
	return nil
}

// MarshalJSON writes a one element list as a single record, as the
// dictionary file does.
func (es Entries) MarshalJSON() ([]byte, error) {
	if len(es) == 1 {
		return json.Marshal(es[0])
	}

	return json.Marshal([]Entry(es))
}
