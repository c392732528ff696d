package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Denominations maps a bill or coin face value to the number of pieces counted.
type Denominations map[int]int

// Total returns the sum of face value times count.
func (d Denominations) Total() decimal.Decimal {
	total := decimal.Zero
	for face, count := range d {
		total = total.Add(decimal.NewFromInt(int64(face)).Mul(decimal.NewFromInt(int64(count))))
	}
	return total
}

// Faces returns the face values in descending order.
func (d Denominations) Faces() []int {
	faces := make([]int, 0, len(d))
	for face := range d {
		faces = append(faces, face)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(faces)))
	return faces
}

// Clone returns an independent copy, or nil for an empty map.
func (d Denominations) Clone() Denominations {
	if len(d) == 0 {
		return nil
	}
	out := make(Denominations, len(d))
	for face, count := range d {
		out[face] = count
	}
	return out
}
