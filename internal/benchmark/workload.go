package benchmark

import (
	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/session"
)

// matrices are the three base operands, allocated once per adapter and owned
// by the session until teardown.
type matrices struct {
	a, b, c compute.Handle
}

func allocate(s *session.Session, size int) (matrices, error) {
	var m matrices
	for _, dst := range []*compute.Handle{&m.a, &m.b, &m.c} {
		h, err := s.RandomUniform(compute.Square(size), 0.0, 1.0)
		if err != nil {
			return matrices{}, err
		}
		*dst = h
	}
	return m, nil
}

// workload issues the composite sequence
//
//	r1 = matmul(A, B)
//	r2 = matmul(B, C)
//	r3 = add(r1, r2)
//	r4 = multiply(r3, A)
//	r5 = matmul(r4, B)
//
// Every intermediate belongs to sc and is released when sc closes.
func workload(sc *session.Scope, m matrices) error {
	r1, err := sc.Matmul(m.a, m.b)
	if err != nil {
		return err
	}
	r2, err := sc.Matmul(m.b, m.c)
	if err != nil {
		return err
	}
	r3, err := sc.Add(r1, r2)
	if err != nil {
		return err
	}
	r4, err := sc.Multiply(r3, m.a)
	if err != nil {
		return err
	}
	_, err = sc.Matmul(r4, m.b)
	return err
}
