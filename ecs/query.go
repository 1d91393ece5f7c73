package ecs

// intersect returns the entities present in every store, walking the smallest
// one. A nil store means nothing matches.
func intersect(stores ...store) []Entity {
	if len(stores) == 0 {
		return nil
	}
	smallest := stores[0]
	for _, s := range stores {
		if s == nil {
			return nil
		}
		if s.len() < smallest.len() {
			smallest = s
		}
	}
	candidates := smallest.entities()
	out := candidates[:0]
	for _, e := range candidates {
		ok := true
		for _, s := range stores {
			if s != smallest && !s.has(e) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}
