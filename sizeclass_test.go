package bufpool

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		strategy GrowthStrategy
		required int
		base     int
		want     int
	}{
		{"linear one byte rounds to base", Linear, 1, MiB, MiB},
		{"linear base stays base", Linear, MiB, MiB, MiB},
		{"linear base+1 rounds to next multiple", Linear, MiB + 1, MiB, 2 * MiB},
		{"linear multiple stays", Linear, 3 * MiB, MiB, 3 * MiB},
		{"exponential one byte rounds to base", Exponential, 1, MiB, MiB},
		{"exponential base+1 rounds to next power", Exponential, MiB + 1, MiB, 2 * MiB},
		{"exponential power stays", Exponential, 2 * MiB, MiB, 2 * MiB},
		{"exponential between powers rounds up", Exponential, 3 * MiB, MiB, 4 * MiB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.strategy.Round(tt.required, tt.base)
			if !ok {
				t.Fatalf("Round(%d, %d) reported overflow", tt.required, tt.base)
			}
			if got != tt.want {
				t.Errorf("Round(%d, %d) = %d, want %d", tt.required, tt.base, got, tt.want)
			}
		})
	}

	t.Run("non-positive inputs are rejected", func(t *testing.T) {
		for _, s := range []GrowthStrategy{Linear, Exponential} {
			if _, ok := s.Round(0, MiB); ok {
				t.Errorf("%s: Round(0) should fail", s)
			}
			if _, ok := s.Round(-1, MiB); ok {
				t.Errorf("%s: Round(-1) should fail", s)
			}
			if _, ok := s.Round(1, 0); ok {
				t.Errorf("%s: Round with base 0 should fail", s)
			}
		}
	})

	t.Run("overflow is reported, not wrapped", func(t *testing.T) {
		if _, ok := Linear.Round(math.MaxInt, math.MaxInt/2); ok {
			t.Error("linear round should report overflow")
		}
		if _, ok := Exponential.Round(math.MaxInt, 3); ok {
			t.Error("exponential round should report overflow")
		}
	})
}

func TestAligned(t *testing.T) {
	t.Run("zero is never aligned", func(t *testing.T) {
		for _, s := range []GrowthStrategy{Linear, Exponential} {
			if s.Aligned(0, MiB) {
				t.Errorf("%s: Aligned(0) should be false", s)
			}
		}
	})

	t.Run("only values reproduced by Round are aligned", func(t *testing.T) {
		for _, v := range []int{MiB, 2 * MiB, 7 * MiB} {
			if !Linear.Aligned(v, MiB) {
				t.Errorf("linear: %d should be aligned", v)
			}
		}
		for _, v := range []int{MiB - 1, MiB + 1, 3*MiB - 7} {
			if Linear.Aligned(v, MiB) {
				t.Errorf("linear: %d should not be aligned", v)
			}
		}
		for _, v := range []int{MiB, 2 * MiB, 8 * MiB} {
			if !Exponential.Aligned(v, MiB) {
				t.Errorf("exponential: %d should be aligned", v)
			}
		}
		for _, v := range []int{3 * MiB, 2*MiB + 1, MiB - 1} {
			if Exponential.Aligned(v, MiB) {
				t.Errorf("exponential: %d should not be aligned", v)
			}
		}
	})
}

func TestSizeClasses(t *testing.T) {
	t.Run("linear class count and sizes", func(t *testing.T) {
		base, max := 1*KiB, 8*KiB
		if got := Linear.classCount(base, max); got != 8 {
			t.Fatalf("classCount = %d, want 8", got)
		}
		for i := range 8 {
			size := Linear.classSize(i, base)
			if size != (i+1)*base {
				t.Errorf("classSize(%d) = %d, want %d", i, size, (i+1)*base)
			}
			if got := Linear.classIndex(size, base); got != i {
				t.Errorf("classIndex(%d) = %d, want %d", size, got, i)
			}
		}
	})

	t.Run("exponential class count and sizes", func(t *testing.T) {
		base, max := 1*KiB, 8*KiB
		if got := Exponential.classCount(base, max); got != 4 {
			t.Fatalf("classCount = %d, want 4", got)
		}
		for i := range 4 {
			size := Exponential.classSize(i, base)
			if size != base<<i {
				t.Errorf("classSize(%d) = %d, want %d", i, size, base<<i)
			}
			if got := Exponential.classIndex(size, base); got != i {
				t.Errorf("classIndex(%d) = %d, want %d", size, got, i)
			}
		}
	})
}
