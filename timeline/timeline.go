// Package timeline expands resolved gloss tokens into the frame sequence
// handed to the renderer.
//
// Every keyframe becomes a fixed number of frames:
//
//	whole word pose                  5 pose frames
//	whole word with no hands         8 caption frames
//	letter or blank                 30 pose frames + 30 caption frames
//
// and every token is followed by 40 blank caption frames. The output only
// depends on the tokens and their keyframes.
package timeline

import (
	"fmt"
	"time"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/resolve"
)

const (
	// FPS is the frame rate the sequence is timed for.
	FPS = 20

	WordPoseFrames      = 5
	NoPoseFrames        = 8
	LetterPoseFrames    = 30
	LetterCaptionFrames = 30
	PauseFrames         = 40
	PlaceholderFrames   = 30

	PlaceholderCaption = "No frames"

	// HandOffset separates the hands on the x axis so that they do not
	// overlap: the left hand is moved by -HandOffset, the right one by
	// +HandOffset.
	HandOffset = 0.02
)

var (
	leftOffset  = coord.Vec3{-HandOffset, 0, 0}
	rightOffset = coord.Vec3{HandOffset, 0, 0}
)

// Kind tells a pose frame from a caption frame.
type Kind int

const (
	Pose Kind = iota
	Caption
)

func (k Kind) String() string {
	switch k {
	case Pose:
		return "pose"
	case Caption:
		return "caption"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pose":
		*k = Pose
	case "caption":
		*k = Caption
	default:
		return fmt.Errorf("unknown frame kind %q", text)
	}

	return nil
}

// Frame is one instant of the animation. A caption frame is a blank canvas
// with a (possibly empty) caption. A pose frame also carries the scene
// coordinates of the hands; both hands may be empty.
type Frame struct {
	Kind    Kind         `json:"kind" msgpack:"kind"`
	Caption string       `json:"caption" msgpack:"caption"`
	Left    coord.Joints `json:"left,omitempty" msgpack:"left,omitempty"`
	Right   coord.Joints `json:"right,omitempty" msgpack:"right,omitempty"`
}

// Timeline is the frame sequence of one utterance together with what the
// renderer needs to draw it.
type Timeline struct {
	FPS      int        `json:"fps" msgpack:"fps"`
	Mean     coord.Vec3 `json:"mean" msgpack:"mean"`
	Skeleton Skeleton   `json:"skeleton" msgpack:"skeleton"`
	Frames   []Frame    `json:"frames" msgpack:"frames"`
}

// Duration is the play time of the frames at the timeline frame rate.
func (t Timeline) Duration() time.Duration {
	if t.FPS <= 0 {
		return 0
	}

	return time.Duration(len(t.Frames)) * time.Second / time.Duration(t.FPS)
}

// Scene converts a dictionary vector to the renderer axes:
// (x, y, z) -> (x, z, -y).
func Scene(v coord.Vec3) coord.Vec3 {
	return coord.Vec3{v[0], v[2], -v[1]}
}

// Mean is the centroid of every joint of every keyframe of the tokens, in
// scene axes. It is the zero vector when there are no joints.
func Mean(tokens []resolve.Token) coord.Vec3 {
	var sum coord.Vec3
	n := 0

	for _, t := range tokens {
		for _, e := range t.Entries {
			for _, hand := range e.Hands() {
				for _, j := range hand {
					sum = sum.Add(Scene(j.Pos))
					n++
				}
			}
		}
	}

	if n == 0 {
		return coord.Vec3{}
	}

	f := float64(n)
	return coord.Vec3{sum[0] / f, sum[1] / f, sum[2] / f}
}

// Assemble builds the timeline of the resolved tokens. Zero tokens give a
// short placeholder clip so that the renderer never gets an empty sequence.
func Assemble(tokens []resolve.Token) Timeline {
	mean := Mean(tokens)

	tl := Timeline{
		FPS:      FPS,
		Mean:     mean,
		Skeleton: Hand(),
	}

	var frames []Frame
	for _, t := range tokens {
		for _, e := range t.Entries {
			frames = appendEntry(frames, t.Text, e, mean)
		}

		frames = repeat(frames, Frame{Kind: Caption}, PauseFrames)
	}

	if len(frames) == 0 {
		frames = repeat(frames, Frame{Kind: Caption, Caption: PlaceholderCaption}, PlaceholderFrames)
	}

	tl.Frames = frames
	return tl
}

func appendEntry(frames []Frame, caption string, e coord.Entry, mean coord.Vec3) []Frame {
	switch e.Kind {
	case coord.WholeWord:
		if e.IsEmpty() {
			return repeat(frames, Frame{Kind: Caption, Caption: caption}, NoPoseFrames)
		}

		pose := Frame{
			Kind:    Pose,
			Caption: caption,
			Left:    place(e.Left, mean, leftOffset),
			Right:   place(e.Right, mean, rightOffset),
		}
		return repeat(frames, pose, WordPoseFrames)

	default:
		// letters and blanks are drawn as a single left hand
		pose := Frame{
			Kind:    Pose,
			Caption: caption,
			Left:    place(e.Hand, mean, leftOffset),
		}
		frames = repeat(frames, pose, LetterPoseFrames)
		return repeat(frames, Frame{Kind: Caption, Caption: caption}, LetterCaptionFrames)
	}
}

// place converts the joints to scene axes, recenters them on the mean and
// applies the hand offset.
func place(hand coord.Joints, mean, offset coord.Vec3) coord.Joints {
	if len(hand) == 0 {
		return nil
	}

	out := make(coord.Joints, len(hand))
	for i, j := range hand {
		out[i] = coord.Joint{Name: j.Name, Pos: Scene(j.Pos).Sub(mean).Add(offset)}
	}

	return out
}

// repeat appends n copies of f. The copies share the joint slices, which are
// never modified after placement.
func repeat(frames []Frame, f Frame, n int) []Frame {
	for i := 0; i < n; i++ {
		frames = append(frames, f)
	}

	return frames
}
