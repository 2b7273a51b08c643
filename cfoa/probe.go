package cfoa

// prober walks the same triangular probe sequence as the single-
// threaded engine: T_i = i*(i+1)/2, a full permutation of group
// indices when the group count is a power of two.
type prober struct {
	base uint64
	tri  uint64
	step uint64
}

func newProber(g0 uint64) prober { return prober{base: g0} }

func (p *prober) group(mask uint64) uint64 { return (p.base + p.tri) & mask }

// advance moves to the next group unconditionally; used where a free
// slot is guaranteed within the first cycle (rehash reinsertion).
func (p *prober) advance() {
	p.step++
	p.tri += p.step
}

// next moves to the next group, reporting false once every group has
// been visited. Lookup must stop there: overflow bits are sticky for a
// generation's lifetime, so on saturated bits the short-circuit alone
// never fires for an absent key.
func (p *prober) next(mask uint64) bool {
	p.step++
	p.tri += p.step
	return p.step <= mask
}
