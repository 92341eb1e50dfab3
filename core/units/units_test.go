package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeBits(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{1024, 10},
		{1025, 11},
	}
	for _, tt := range tests {
		if got := DecodeBits(tt.n); got != tt.want {
			t.Errorf("DecodeBits(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestScaleBetween(t *testing.T) {
	got := ScaleBetween(65, 28, nil)
	want := decimal.RequireFromString("0.12").DivRound(decimal.RequireFromString("0.52"), 16)
	if !got.Equal(want) {
		t.Errorf("ScaleBetween(65, 28) = %s, want %s", got, want)
	}

	if got := ScaleBetween(28, 28, nil); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("same node scale = %s, want 1", got)
	}
}

func TestScaleBetweenUnknownNode(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	got := ScaleBetween(65, 40, zap.New(core))
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unknown node scale = %s, want 1", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d warnings, want 1", logs.Len())
	}
	if n := logs.All()[0].ContextMap()["node_nm"]; n != int64(40) {
		t.Errorf("warning node_nm = %v, want 40", n)
	}
}

func TestKnownNodes(t *testing.T) {
	nodes := KnownNodes()
	if len(nodes) == 0 || nodes[0] != 65 {
		t.Fatalf("KnownNodes() = %v, want largest node first", nodes)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i] >= nodes[i-1] {
			t.Errorf("KnownNodes() not descending: %v", nodes)
		}
	}
}
