package logic

// Classify converts a raw pin level or an emulated action into a logical edge.
// Under ActiveLow a low pin is a press; ActiveHigh inverts this.
func Classify(level bool, polarity Polarity, action Emulate) Edge {
	switch action {
	case EmulatePress:
		return PressEdge
	case EmulateRelease:
		return ReleaseEdge
	}

	pressed := !level
	if polarity == ActiveHigh {
		pressed = level
	}
	if pressed {
		return PressEdge
	}
	return ReleaseEdge
}
