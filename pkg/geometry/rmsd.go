// Package geometry superimposes conformers and measures their deviation.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// ErrSize is returned when two structures cannot be compared atom by atom.
var ErrSize = errors.New("structures differ in size")

// RMSD returns the root-mean-square deviation between test and ref over the
// atoms in indices (all atoms when indices is empty) after optimal
// superposition of those atoms.
func RMSD(test, ref []core.Vec3, indices []int) (float64, error) {
	p, q, err := selection(test, ref, indices)
	if err != nil {
		return 0, err
	}
	n := float64(len(p))

	pc, qc := centroid(p), centroid(q)
	var sp, sq float64
	for i := range p {
		for k := 0; k < 3; k++ {
			dp := p[i][k] - pc[k]
			dq := q[i][k] - qc[k]
			sp += dp * dp
			sq += dq * dq
		}
	}

	_, s, d, err := kabsch(p, q, pc, qc)
	if err != nil {
		return 0, err
	}
	msd := (sp + sq - 2*(s[0]+s[1]+d*s[2])) / n
	if msd < 0 {
		// rounding for identical structures
		msd = 0
	}
	return math.Sqrt(msd), nil
}

// Superpose rotates and translates every atom of test so that the atoms in
// indices (all atoms when empty) best overlay the same atoms of ref.
func Superpose(test, ref []core.Vec3, indices []int) ([]core.Vec3, error) {
	p, q, err := selection(test, ref, indices)
	if err != nil {
		return nil, err
	}
	pc, qc := centroid(p), centroid(q)
	rot, _, _, err := kabsch(p, q, pc, qc)
	if err != nil {
		return nil, err
	}

	out := make([]core.Vec3, len(test))
	for i, v := range test {
		var x core.Vec3
		for r := 0; r < 3; r++ {
			sum := 0.0
			for c := 0; c < 3; c++ {
				sum += rot.At(r, c) * (v[c] - pc[c])
			}
			x[r] = sum + qc[r]
		}
		out[i] = x
	}
	return out, nil
}

// kabsch returns the proper rotation taking the centred p onto the centred q,
// the singular values of their covariance and the reflection sign.
func kabsch(p, q []core.Vec3, pc, qc core.Vec3) (*mat.Dense, []float64, float64, error) {
	h := mat.NewDense(3, 3, nil)
	for i := range p {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				h.Set(r, c, h.At(r, c)+(p[i][r]-pc[r])*(q[i][c]-qc[c]))
			}
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return nil, nil, 0, fmt.Errorf("superposition: SVD did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1.0
	}

	diag := mat.NewDiagDense(3, []float64{1, 1, d})
	var vd, rot mat.Dense
	vd.Mul(&v, diag)
	rot.Mul(&vd, u.T())
	return &rot, s, d, nil
}

func selection(test, ref []core.Vec3, indices []int) ([]core.Vec3, []core.Vec3, error) {
	if len(test) != len(ref) {
		return nil, nil, fmt.Errorf("%w: %d vs %d atoms", ErrSize, len(test), len(ref))
	}
	if len(indices) == 0 {
		if len(test) == 0 {
			return nil, nil, fmt.Errorf("%w: no atoms", ErrSize)
		}
		return test, ref, nil
	}
	p := make([]core.Vec3, len(indices))
	q := make([]core.Vec3, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(test) {
			return nil, nil, fmt.Errorf("atom index %d out of range", idx)
		}
		p[i] = test[idx]
		q[i] = ref[idx]
	}
	return p, q, nil
}

func centroid(pos []core.Vec3) core.Vec3 {
	var c core.Vec3
	for _, v := range pos {
		c[0] += v[0]
		c[1] += v[1]
		c[2] += v[2]
	}
	n := float64(len(pos))
	c[0] /= n
	c[1] /= n
	c[2] /= n
	return c
}
