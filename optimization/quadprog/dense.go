// Copyright 2024 Annikka
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quadprog

import "gonum.org/v1/gonum/mat"

// ObjectiveLinearVector returns the objective's linear coefficients as a
// dense vector of length NumVariables, or nil if the program has no
// variables.
func (qp *QuadraticProgram) ObjectiveLinearVector() *mat.VecDense {
	if len(qp.vars) == 0 {
		return nil
	}
	v := mat.NewVecDense(len(qp.vars), nil)
	for ind, coef := range qp.objective.linear {
		v.SetVec(int(ind), coef)
	}
	return v
}

// ObjectiveQuadraticMatrix returns the objective's quadratic coefficients as
// a dense NumVariables x NumVariables matrix, or nil if the program has no
// variables. Entry (j,k) holds the stored coefficient for the ordering
// (j,k); the effective coefficient of an off-diagonal pair is the sum of the
// (j,k) and (k,j) entries.
func (qp *QuadraticProgram) ObjectiveQuadraticMatrix() *mat.Dense {
	n := len(qp.vars)
	if n == 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for key, coef := range qp.objective.quadratic {
		m.Set(int(key.First), int(key.Second), coef)
	}
	return m
}
