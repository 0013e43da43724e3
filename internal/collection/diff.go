package collection

// Change lists how record ids moved between two refreshes.
type Change struct {
	Added   []string
	Removed []string
	Kept    []string
}

// Empty reports whether the id sets are identical.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Diff compares two id lists. Added and Kept follow next's order, Removed
// follows prev's order.
func Diff(prev, next []string) Change {
	before := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		before[id] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))
	for _, id := range next {
		after[id] = struct{}{}
	}

	var ch Change
	for _, id := range next {
		if _, ok := before[id]; ok {
			ch.Kept = append(ch.Kept, id)
		} else {
			ch.Added = append(ch.Added, id)
		}
	}
	for _, id := range prev {
		if _, ok := after[id]; !ok {
			ch.Removed = append(ch.Removed, id)
		}
	}
	return ch
}
