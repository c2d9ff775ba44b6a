package svgmap

// LabelRegistry tracks label names already placed in a document so the
// same name is never drawn twice, even when it appears in multiple
// layers. A fresh registry is created for every document.
type LabelRegistry struct {
	used map[string]struct{}
}

// NewLabelRegistry returns an empty registry.
func NewLabelRegistry() *LabelRegistry {
	return &LabelRegistry{used: make(map[string]struct{})}
}

// Claim reserves a label name. It returns true on first use and false
// if the name was already claimed in this document.
func (r *LabelRegistry) Claim(name string) bool {
	if _, ok := r.used[name]; ok {
		return false
	}
	r.used[name] = struct{}{}
	return true
}

// Len returns the number of claimed names.
func (r *LabelRegistry) Len() int { return len(r.used) }
