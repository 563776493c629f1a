package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/pkg/errors"
)

// loadCSV reads a numeric CSV dataset with a header row. The last column is
// the regression target; everything before it is a feature.
func loadCSV(path string) (X, y *mat.Dense, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading header of %s", path)
	}
	cols := len(header)
	if cols < 2 {
		return nil, nil, errors.NewValueError("loadCSV", "dataset needs at least one feature column and one target column")
	}

	var features []float64
	var target []float64
	row := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading %s row %d", path, row)
		}

		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parsing %s row %d column %q", path, row, header[i])
			}
			if i == cols-1 {
				target = append(target, v)
			} else {
				features = append(features, v)
			}
		}
		row++
	}

	n := len(target)
	if n == 0 {
		return nil, nil, errors.Wrapf(errors.ErrEmptyData, "dataset %s", path)
	}
	return mat.NewDense(n, cols-1, features), mat.NewDense(n, 1, target), nil
}
