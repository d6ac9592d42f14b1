package timeline

// HandJoints is the number of joints of a hand skeleton.
const HandJoints = 21

// Bone connects two joints by their index in a hand's joint list.
type Bone [2]int

// Skeleton is the fixed topology drawn for every hand.
type Skeleton struct {
	Joints int    `json:"joints" msgpack:"joints"`
	Bones  []Bone `json:"bones" msgpack:"bones"`
}

// Hand returns the hand skeleton: four bones per finger from the wrist (0)
// through thumb, index, middle, ring and pinky, then the palm closure from
// the wrist to the pinky base.
func Hand() Skeleton {
	return Skeleton{
		Joints: HandJoints,
		Bones: []Bone{
			{0, 1}, {1, 2}, {2, 3}, {3, 4},
			{0, 5}, {5, 6}, {6, 7}, {7, 8},
			{5, 9}, {9, 10}, {10, 11}, {11, 12},
			{9, 13}, {13, 14}, {14, 15}, {15, 16},
			{13, 17}, {17, 18}, {18, 19}, {19, 20},
			{0, 17},
		},
	}
}

// Drawable returns the bones whose joints both exist in a hand of n joints.
func (s Skeleton) Drawable(n int) []Bone {
	var bones []Bone
	for _, b := range s.Bones {
		if b[0] < n && b[1] < n {
			bones = append(bones, b)
		}
	}

	return bones
}
