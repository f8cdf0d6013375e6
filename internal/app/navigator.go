package app

// Navigator tracks the current question index within a fixed question count.
// All movement is clamped; there is no wraparound.
type Navigator struct {
	count int
	index int
}

// NewNavigator starts at the first question.
func NewNavigator(questionCount int) *Navigator {
	if questionCount < 0 {
		questionCount = 0
	}
	return &Navigator{count: questionCount}
}

// Next advances one step unless already on the last question.
func (n *Navigator) Next() {
	if n.index < n.count-1 {
		n.index++
	}
}

// Previous retreats one step unless already on the first question.
func (n *Navigator) Previous() {
	if n.index > 0 {
		n.index--
	}
}

// JumpTo sets the index directly, clamped into [0, count).
func (n *Navigator) JumpTo(index int) {
	if index < 0 {
		index = 0
	}
	if index >= n.count {
		index = n.count - 1
	}
	if index < 0 {
		index = 0
	}
	n.index = index
}

// Index returns the current question index.
func (n *Navigator) Index() int { return n.index }

// IsFirst reports whether the cursor is on the first question.
func (n *Navigator) IsFirst() bool { return n.index == 0 }

// IsLast reports whether the cursor is on the last question.
func (n *Navigator) IsLast() bool { return n.count == 0 || n.index == n.count-1 }

// ProgressFraction returns (index+1)/count, or 0 for an empty quiz.
func (n *Navigator) ProgressFraction() float64 {
	if n.count == 0 {
		return 0
	}
	return float64(n.index+1) / float64(n.count)
}
