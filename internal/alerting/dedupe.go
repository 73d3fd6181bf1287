package alerting

// Dedupe collapses configurations that describe the same remote alert,
// keeping the first occurrence of each identity in input order. Dropped
// duplicates are returned so callers can report which rows were redundant
// instead of discarding them silently.
func Dedupe(configs []AlertConfig) (kept, dropped []AlertConfig) {
	seen := make(map[Key]struct{}, len(configs))
	for _, cfg := range configs {
		key := cfg.Key()
		if _, ok := seen[key]; ok {
			dropped = append(dropped, cfg)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, cfg)
	}
	return kept, dropped
}
