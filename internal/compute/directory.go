package compute

import "fmt"

// ListAdapters returns the backend's adapters with indices normalized to
// their position. The index is the join key for every later stage, so it must
// not depend on what the backend chose to report.
func ListAdapters(b Backend) ([]Adapter, error) {
	if b == nil {
		return nil, fmt.Errorf("list adapters: nil backend")
	}
	adapters, err := b.Adapters()
	if err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}

	out := make([]Adapter, len(adapters))
	for i, a := range adapters {
		a.Index = i
		out[i] = a
	}
	return out, nil
}
