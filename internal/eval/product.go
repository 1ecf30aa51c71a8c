package eval

import "github.com/jaf-ql/jaf/internal/value"

// product enumerates the Cartesian product of its argument lists lazily,
// odometer style. The first list varies slowest, matching nested iteration
// order. An empty list makes the product empty.
type product struct {
	lists [][]value.Value
	index []int
	done  bool
}

func newProduct(lists [][]value.Value) *product {
	p := &product{
		lists: lists,
		index: make([]int, len(lists)),
	}
	for _, list := range lists {
		if len(list) == 0 {
			p.done = true
			break
		}
	}
	return p
}

// next fills out with the current combination and advances the odometer.
// It returns false once the product is exhausted; out must have the same
// length as the argument lists.
func (p *product) next(out []value.Value) bool {
	if p.done {
		return false
	}
	for i, list := range p.lists {
		out[i] = list[p.index[i]]
	}

	for pos := len(p.lists) - 1; pos >= 0; pos-- {
		p.index[pos]++
		if p.index[pos] < len(p.lists[pos]) {
			return true
		}
		p.index[pos] = 0
	}
	p.done = true
	return true
}
