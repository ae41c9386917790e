package lib

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestClampLevel(t *testing.T) {
	tests := []struct {
		level, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{3, 3},
		{10, 10},
		{11, 10},
		{99, 10},
	}

	for _, tt := range tests {
		if got := ClampLevel(tt.level); got != tt.want {
			t.Errorf("ClampLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestBuildKernelWeights(t *testing.T) {
	for level := MinLevel; level <= MaxLevel; level++ {
		k := BuildKernel(level)

		if k.Size() != 3 {
			t.Fatalf("level %d: Size = %d, want 3", level, k.Size())
		}
		if k.Radius() != 1 {
			t.Errorf("level %d: Radius = %d, want 1", level, k.Radius())
		}
		if got, want := k.At(1, 1), float64(5+level); got != want {
			t.Errorf("level %d: center = %v, want %v", level, got, want)
		}
		for _, pos := range [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 1}} {
			if got := k.At(pos[0], pos[1]); got != -1 {
				t.Errorf("level %d: At(%d,%d) = %v, want -1", level, pos[0], pos[1], got)
			}
		}
		for _, pos := range [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}} {
			if got := k.At(pos[0], pos[1]); got != 0 {
				t.Errorf("level %d: At(%d,%d) = %v, want 0", level, pos[0], pos[1], got)
			}
		}
		if got, want := k.Sum(), float64(1+level); got != want {
			t.Errorf("level %d: Sum = %v, want %v", level, got, want)
		}
	}
}

func TestBuildKernelClampsOutOfRangeLevels(t *testing.T) {
	for _, level := range []int{-5, 0, 11, 99} {
		got := BuildKernel(level)
		want := BuildKernel(ClampLevel(level))
		if !mat.Equal(got.weights, want.weights) {
			t.Errorf("BuildKernel(%d) differs from BuildKernel(%d)", level, ClampLevel(level))
		}
	}
}

func TestKernelFromDense(t *testing.T) {
	k, err := KernelFromDense(mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}))
	if err != nil {
		t.Fatalf("KernelFromDense(3x3): %v", err)
	}
	if k.Size() != 3 || k.Sum() != 1 {
		t.Errorf("3x3 identity: Size = %d, Sum = %v", k.Size(), k.Sum())
	}

	if _, err := KernelFromDense(mat.NewDense(1, 1, []float64{2})); err != nil {
		t.Errorf("KernelFromDense(1x1): %v", err)
	}
	if _, err := KernelFromDense(mat.NewDense(5, 5, make([]float64, 25))); err != nil {
		t.Errorf("KernelFromDense(5x5): %v", err)
	}
}

func TestKernelFromDenseRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		m    *mat.Dense
	}{
		{"nil", nil},
		{"non-square", mat.NewDense(2, 3, make([]float64, 6))},
		{"even", mat.NewDense(4, 4, make([]float64, 16))},
	}

	for _, tt := range tests {
		if _, err := KernelFromDense(tt.m); !errors.Is(err, ErrInvalidKernelShape) {
			t.Errorf("%s: err = %v, want ErrInvalidKernelShape", tt.name, err)
		}
	}
}

func TestKernelFromDenseCopiesWeights(t *testing.T) {
	src := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	})
	k, err := KernelFromDense(src)
	if err != nil {
		t.Fatal(err)
	}

	src.Set(1, 1, 100)
	if got := k.At(1, 1); got != 1 {
		t.Errorf("kernel changed with source matrix: At(1,1) = %v, want 1", got)
	}
}
