// Package units - Numeric helpers for area estimation
// Decode bit-widths and technology-node area scaling.
package units

import (
	"math/bits"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DecodeBits returns ceil(log2(n)): the address bits needed to select one of
// n entries. One entry (or fewer) needs no decoding.
func DecodeBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// nodeScale holds relative bit-cell area per technology node in nm, from
// industry-reported SRAM cell size trends.
var nodeScale = map[int]decimal.Decimal{
	65: decimal.RequireFromString("0.52"),
	28: decimal.RequireFromString("0.12"),
	22: decimal.RequireFromString("0.095"),
	16: decimal.RequireFromString("0.074"),
	10: decimal.RequireFromString("0.042"),
	7:  decimal.RequireFromString("0.027"),
	5:  decimal.RequireFromString("0.021"),
	3:  decimal.RequireFromString("0.1999"),
}

// KnownNodes returns the nodes with a scale entry, largest first
func KnownNodes() []int {
	nodes := make([]int, 0, len(nodeScale))
	for n := range nodeScale {
		nodes = append(nodes, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nodes)))
	return nodes
}

// NodeScale returns the relative area factor for a node
func NodeScale(node int) (decimal.Decimal, bool) {
	s, ok := nodeScale[node]
	return s, ok
}

// ScaleBetween returns the area factor converting layouts drawn at node
// `from` to node `to`. Unknown nodes yield 1 with a warning on log.
func ScaleBetween(from, to int, log *zap.Logger) decimal.Decimal {
	if log == nil {
		log = zap.NewNop()
	}
	a, okFrom := NodeScale(from)
	b, okTo := NodeScale(to)
	if !okFrom {
		log.Warn("not a recognized scaling technology node", zap.Int("node_nm", from))
	}
	if !okTo {
		log.Warn("not a recognized scaling technology node", zap.Int("node_nm", to))
	}
	if !okFrom || !okTo {
		return decimal.NewFromInt(1)
	}
	return b.DivRound(a, 16)
}
