package practice

// LocalProgress tracks questions attempted and correct during a live
// session. These counters are the authoritative source for the in-session
// display: the server Session's own counters are only refreshed by
// EndSession, so the two are deliberately kept apart.
type LocalProgress struct {
	Attempted int
	Correct   int
}

// Record adds one submitted answer.
func (p *LocalProgress) Record(correct bool) {
	p.Attempted++
	if correct {
		p.Correct++
	}
}

// Accuracy returns Correct/Attempted, 0 when nothing was attempted.
func (p LocalProgress) Accuracy() float64 {
	if p.Attempted == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Attempted)
}
