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

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// feasibilityTol is the absolute tolerance used when checking a fully
// substituted constraint or a fixed value against variable bounds.
const feasibilityTol = 1e-10

// SubstituteVariables returns a new program in which every variable listed in
// `fixed` is replaced by its value. The fixed variables are removed; their
// contributions are folded into the objective offset and linear terms and
// into each constraint's right-hand side. The remaining variables keep their
// relative order and are reindexed from zero.
//
// A constraint whose row becomes empty is dropped from the result after a
// feasibility check; if the check fails, the returned program has status
// StatusInfeasible. A fixed value outside its variable's bounds also yields
// StatusInfeasible. With a complete assignment the result has no variables,
// its objective offset is the original objective evaluated at the
// assignment, and its status reflects whether every original constraint is
// satisfied.
//
// The receiver is never modified.
func (qp *QuadraticProgram) SubstituteVariables(fixed map[VarIndex]float64) (*QuadraticProgram, error) {
	status := qp.status

	for ind, val := range fixed {
		if ind < 0 || int(ind) >= len(qp.vars) {
			return nil, fmt.Errorf("cannot substitute unknown variable index %v", ind)
		}
		v := qp.vars[ind]
		if val < v.lb-feasibilityTol || val > v.ub+feasibilityTol {
			log.Warningf("substituted value %v for variable %s is outside its bounds [%v,%v]", val, v.name, v.lb, v.ub)
			status = StatusInfeasible
		}
	}

	dst := New(qp.name)

	// Reindex the surviving variables, preserving their relative order.
	newIndex := make(map[VarIndex]VarIndex, len(qp.vars)-len(fixed))
	for i, v := range qp.vars {
		old := VarIndex(i)
		if _, ok := fixed[old]; ok {
			continue
		}
		nv, err := dst.addVar(v.kind, v.lb, v.ub, v.name)
		if err != nil {
			return nil, err
		}
		newIndex[old] = nv.ind
	}

	offset := qp.objective.offset
	linear := make(map[VarIndex]float64)
	quadratic := make(map[QuadKey]float64)

	for ind, coef := range qp.objective.linear {
		if val, ok := fixed[ind]; ok {
			offset += coef * val
		} else {
			linear[newIndex[ind]] += coef
		}
	}
	for key, coef := range qp.objective.quadratic {
		vi, iFixed := fixed[key.First]
		vj, jFixed := fixed[key.Second]
		switch {
		case iFixed && jFixed:
			offset += coef * vi * vj
		case iFixed:
			linear[newIndex[key.Second]] += coef * vi
		case jFixed:
			linear[newIndex[key.First]] += coef * vj
		default:
			quadratic[QuadKey{First: newIndex[key.First], Second: newIndex[key.Second]}] += coef
		}
	}

	if qp.objective.sense == Minimize {
		dst.Minimize(offset, linear, quadratic)
	} else {
		dst.Maximize(offset, linear, quadratic)
	}

	for _, c := range qp.constraints {
		rhs := c.rhs
		row := make(map[VarIndex]float64)
		for ind, coef := range c.row {
			if val, ok := fixed[ind]; ok {
				rhs -= coef * val
			} else {
				row[newIndex[ind]] += coef
			}
		}

		// With every row variable fixed, the constraint reduces to
		// `0 <sense> rhs` and is dropped after checking it holds.
		if len(row) == 0 {
			if !holds(c.sense, rhs) {
				log.Warningf("substitution violates constraint %s", c.name)
				status = StatusInfeasible
			}
			continue
		}

		if _, err := dst.AddLinearConstraint(row, c.sense, rhs, c.name); err != nil {
			return nil, err
		}
	}

	dst.status = status
	return dst, nil
}

// holds reports whether `0 <sense> rhs` is satisfied within feasibilityTol.
func holds(sense ConstraintSense, rhs float64) bool {
	switch sense {
	case Equal:
		return math.Abs(rhs) <= feasibilityTol
	case LessEqual:
		return rhs >= -feasibilityTol
	case GreaterEqual:
		return rhs <= feasibilityTol
	}
	return false
}
