package funnel

type Owner struct {
	ID   int
	Name string
}

// OwnerRegistry records owners as stage histories reference them. Append
// only; the first name recorded for an id wins.
type OwnerRegistry struct {
	byID  map[int]Owner
	order []int
}

func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{byID: map[int]Owner{}}
}

func (r *OwnerRegistry) Record(o Owner) {
	if _, ok := r.byID[o.ID]; ok {
		return
	}
	r.byID[o.ID] = o
	r.order = append(r.order, o.ID)
}

func (r *OwnerRegistry) Get(id int) (Owner, bool) {
	o, ok := r.byID[id]
	return o, ok
}

// Owners returns owners in first-referenced order.
func (r *OwnerRegistry) Owners() []Owner {
	out := make([]Owner, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

func (r *OwnerRegistry) Len() int { return len(r.order) }
