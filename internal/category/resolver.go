package category

// Resolver maps fine-grained labels to output categories.
type Resolver struct {
	categories []Category
	byLabel    map[string]Category
	unused     []string
}

// NewResolver indexes table against categories.
//
// Categories are visited in id order and each one claims the members of the
// group with the same name. A label listed under several groups resolves to
// the earliest category. Groups with no matching category are reported by
// Unused.
func NewResolver(categories []Category, table *GroupTable) *Resolver {
	r := &Resolver{
		categories: append([]Category(nil), categories...),
		byLabel:    make(map[string]Category),
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Name] = true
		g, ok := table.Lookup(c.Name)
		if !ok {
			continue
		}
		for _, label := range g.Members {
			if _, taken := r.byLabel[label]; !taken {
				r.byLabel[label] = c
			}
		}
	}
	for _, g := range table.groups {
		if !known[g.Name] {
			r.unused = append(r.unused, g.Name)
		}
	}
	return r
}

// Resolve returns the category for label. The second result is false when no
// group contains label.
func (r *Resolver) Resolve(label string) (Category, bool) {
	c, ok := r.byLabel[label]
	return c, ok
}

// Categories returns the categories in id order.
func (r *Resolver) Categories() []Category {
	return append([]Category(nil), r.categories...)
}

// Unused returns the names of groups that match no category.
func (r *Resolver) Unused() []string {
	return append([]string(nil), r.unused...)
}
