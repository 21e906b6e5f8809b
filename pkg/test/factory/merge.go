package factory

// merge folds the maps left to right so later keys win. fabricator only
// reads the first override map it is given.
func merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}

	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}

	return out
}
