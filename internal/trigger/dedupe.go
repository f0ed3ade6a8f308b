package trigger

// IsAcceptable reports whether candidate may be committed as the next capture.
// Only the immediately preceding accepted frame is considered, and only exact
// byte equality with matching dimensions counts as a duplicate.
func IsAcceptable(candidate, lastAccepted *PixelFrame) bool {
	if lastAccepted == nil {
		return true
	}
	return !candidate.Equal(lastAccepted)
}
