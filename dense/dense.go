// Package dense feeds row-major *tensor.Dense batches to a helios network.
// Each row of a matrix is one example.
package dense

import (
	"github.com/gorgonia/helios"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

// rows views a float64 matrix as one slice per row, sharing the backing data.
func rows(t *tensor.Dense, cols int, name string) ([][]float64, error) {
	if t == nil {
		return nil, errors.Wrapf(helios.ErrShape, "%s is nil", name)
	}
	if t.Dtype() != tensor.Float64 {
		return nil, errors.Wrapf(helios.ErrShape, "%s is %v, expected float64", name, t.Dtype())
	}
	if t.Dims() != 2 || t.Shape()[1] != cols {
		return nil, errors.Wrapf(helios.ErrShape, "%s has shape %v, expected (n, %d)", name, t.Shape(), cols)
	}
	if t.Shape()[0] < 1 {
		return nil, errors.Wrapf(helios.ErrShape, "%s has no rows", name)
	}
	retVal, err := native.MatrixF64(t)
	if err != nil {
		return nil, errors.Wrapf(helios.ErrShape, "%s: %v", name, err)
	}
	return retVal, nil
}

// Train trains net on the rows of x against the rows of y.
func Train(net *helios.Network, x, y *tensor.Dense) error {
	xs, err := rows(x, net.Dimensionality(), "x")
	if err != nil {
		return err
	}
	ys, err := rows(y, net.Outputs(), "y")
	if err != nil {
		return err
	}
	return net.Train(xs, ys)
}

// Classify runs every row of x through net and returns an (n, Outputs()) matrix.
func Classify(net *helios.Network, x *tensor.Dense) (*tensor.Dense, error) {
	xs, err := rows(x, net.Dimensionality(), "x")
	if err != nil {
		return nil, err
	}
	retVal := tensor.New(tensor.WithShape(len(xs), net.Outputs()), tensor.Of(tensor.Float64))
	results, err := native.MatrixF64(retVal)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := net.Classify(xs, results); err != nil {
		return nil, err
	}
	return retVal, nil
}

// Loss is the mean squared error of net over the rows of x and y.
func Loss(net *helios.Network, x, y *tensor.Dense) (float64, error) {
	xs, err := rows(x, net.Dimensionality(), "x")
	if err != nil {
		return 0, err
	}
	ys, err := rows(y, net.Outputs(), "y")
	if err != nil {
		return 0, err
	}
	return net.Loss(xs, ys)
}
