package lib

import (
	"gonum.org/v1/gonum/mat"
)

const (
	MinLevel     = 1
	MaxLevel     = 10
	DefaultLevel = 3
)

// Kernel is an odd-sized square convolution matrix. The zero value is
// not usable; build one with BuildKernel or KernelFromDense.
type Kernel struct {
	weights *mat.Dense
}

func ClampLevel(level int) int {
	return clamp(level, MinLevel, MaxLevel)
}

// BuildKernel returns the 3x3 sharpening kernel for the given level.
// The level is clamped to [MinLevel, MaxLevel] first, so out-of-range
// input behaves exactly like its clamped value. The weights sum to
// 1+level, which brightens the result on purpose.
func BuildKernel(level int) Kernel {
	level = ClampLevel(level)
	return Kernel{weights: mat.NewDense(3, 3, []float64{
		0, -1, 0,
		-1, float64(5 + level), -1,
		0, -1, 0,
	})}
}

// KernelFromDense wraps an arbitrary matrix as a convolution kernel.
// The matrix must be square with an odd dimension.
func KernelFromDense(m *mat.Dense) (Kernel, error) {
	if m == nil {
		return Kernel{}, ErrInvalidKernelShape
	}
	rows, cols := m.Dims()
	if rows != cols || rows < 1 || rows%2 == 0 {
		return Kernel{}, ErrInvalidKernelShape
	}
	return Kernel{weights: mat.DenseCopyOf(m)}, nil
}

func (k Kernel) Size() int {
	if k.weights == nil {
		return 0
	}
	rows, _ := k.weights.Dims()
	return rows
}

func (k Kernel) Radius() int {
	return k.Size() / 2
}

func (k Kernel) At(row, col int) float64 {
	return k.weights.At(row, col)
}

func (k Kernel) Sum() float64 {
	if k.weights == nil {
		return 0
	}
	return mat.Sum(k.weights)
}
