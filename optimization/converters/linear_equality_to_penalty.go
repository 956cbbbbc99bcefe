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

// Package converters transforms quadratic programs between equivalent
// formulations.
//
// `LinearEqualityToPenalty` converts a program whose constraints are all
// linear equalities into an unconstrained program by folding each constraint
// into the objective as a squared penalty term. `Encode` returns the
// unconstrained program together with a `Conversion` handle; after an
// external solver has optimized the unconstrained program, the handle's
// `Decode` reinterprets the solver's result against the original program.
package converters

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"

	"github.com/Annikka/qiskit-aqua/optimization/quadprog"
)

// The fatal conditions reported by Encode and Decode.
var (
	// ErrInvalidConstraintKind holds the error when an input constraint is
	// not an equality.
	ErrInvalidConstraintKind = errors.New("constraint is not an equality")
	// ErrUnsupportedVariableKind holds the error when an input variable has a
	// kind other than continuous, binary, or integer.
	ErrUnsupportedVariableKind = errors.New("unsupported variable kind")
	// ErrDimensionMismatch holds the error when a decoded result's value
	// count differs from the source program's variable count.
	ErrDimensionMismatch = errors.New("result dimension does not match the source program")
)

// defaultPenalty is the fixed penalty factor used when the automatic
// heuristic cannot be trusted, i.e. when a constraint carries a fractional
// coefficient.
const defaultPenalty = 1e5

// LinearEqualityToPenalty converts a quadratic program with only linear
// equality constraints into an unconstrained program with penalty terms.
//
// The zero value is ready to use: the penalty factor is computed
// automatically per Encode call and the destination program keeps the source
// program's name.
type LinearEqualityToPenalty struct {
	penalty    float64
	hasPenalty bool
	name       string
	hasName    bool
}

// NewLinearEqualityToPenalty creates a converter with an automatic penalty
// factor and no destination name override.
func NewLinearEqualityToPenalty() *LinearEqualityToPenalty {
	return &LinearEqualityToPenalty{}
}

// SetPenalty sets a fixed penalty factor for subsequent Encode calls.
func (conv *LinearEqualityToPenalty) SetPenalty(penalty float64) {
	conv.penalty = penalty
	conv.hasPenalty = true
}

// ClearPenalty restores the automatic penalty factor for subsequent Encode
// calls.
func (conv *LinearEqualityToPenalty) ClearPenalty() {
	conv.penalty = 0
	conv.hasPenalty = false
}

// Penalty returns the fixed penalty factor, and false if the factor is
// computed automatically per Encode call.
func (conv *LinearEqualityToPenalty) Penalty() (float64, bool) {
	return conv.penalty, conv.hasPenalty
}

// SetName sets the name given to destination programs built by subsequent
// Encode calls.
func (conv *LinearEqualityToPenalty) SetName(name string) {
	conv.name = name
	conv.hasName = true
}

// ClearName restores the default destination naming, which reuses the source
// program's name.
func (conv *LinearEqualityToPenalty) ClearName() {
	conv.name = ""
	conv.hasName = false
}

// Name returns the destination name override, and false if destination
// programs reuse the source program's name.
func (conv *LinearEqualityToPenalty) Name() (string, bool) {
	return conv.name, conv.hasName
}

// Conversion records one Encode call: a deep copy of the source program and
// the penalty factor that was used. Each Encode call returns a fresh
// Conversion, so independent conversions may be decoded concurrently.
type Conversion struct {
	src     *quadprog.QuadraticProgram
	penalty float64
}

// Penalty returns the penalty factor used in the conversion.
func (c *Conversion) Penalty() float64 {
	return c.penalty
}

// Encode converts a program whose constraints are all linear equalities into
// an unconstrained program. The destination program has the same variables
// as the source, in the same order and with the same kinds and bounds, no
// constraints, and an objective equal to the source objective plus
// `penalty*(rhs-row)^2` for every constraint, negated when maximizing so the
// penalty still worsens infeasible assignments. The source program is never
// modified.
//
// Encode returns ErrInvalidConstraintKind if any constraint is an
// inequality, and ErrUnsupportedVariableKind if a variable's kind is
// unknown.
func (conv *LinearEqualityToPenalty) Encode(p *quadprog.QuadraticProgram) (*quadprog.QuadraticProgram, *Conversion, error) {
	// Reject inequalities before building anything so a partially penalized
	// program is never observable.
	for _, c := range p.LinearConstraints() {
		if c.Sense() != quadprog.Equal {
			return nil, nil, fmt.Errorf("constraint %s has sense %v: %w", c.Name(), c.Sense(), ErrInvalidConstraintKind)
		}
	}

	src := p.Copy()

	penalty := conv.penalty
	if !conv.hasPenalty {
		penalty = autoPenalty(src)
	}

	name := src.Name()
	if conv.hasName {
		name = conv.name
	}
	dst := quadprog.New(name)

	for _, x := range src.Variables() {
		var err error
		switch x.Kind() {
		case quadprog.Continuous:
			_, err = dst.NewContinuousVar(x.LowerBound(), x.UpperBound(), x.Name())
		case quadprog.Binary:
			_, err = dst.NewBinaryVar(x.Name())
		case quadprog.Integer:
			_, err = dst.NewIntegerVar(x.LowerBound(), x.UpperBound(), x.Name())
		default:
			return nil, nil, fmt.Errorf("variable %s has kind %v: %w", x.Name(), x.Kind(), ErrUnsupportedVariableKind)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	obj := src.Objective()
	offset := obj.Offset()
	linear := obj.LinearTerms()
	quadratic := obj.QuadraticTerms()

	// The sign factor is chosen once per call: +1 when minimizing, -1 when
	// maximizing, so that the penalty worsens the objective value of
	// infeasible assignments in either direction.
	sign := 1.0
	if obj.Sense() == quadprog.Maximize {
		sign = -1.0
	}

	for _, c := range src.LinearConstraints() {
		constant := c.RHS()
		row := c.Row()

		// Constant part of penalty*(C-row)^2: penalty*C^2.
		offset += sign * penalty * constant * constant

		// Linear part: penalty*(-2*C*row).
		for j, coef := range row {
			linear[j] += sign * penalty * -2 * coef * constant
		}

		// Quadratic part: penalty*row^2. The loops run over both orderings
		// of every pair, so no factor of 2 is needed.
		for j, coef1 := range row {
			for k, coef2 := range row {
				key := quadprog.QuadKey{First: j, Second: k}
				quadratic[key] += sign * penalty * coef1 * coef2
			}
		}
	}

	if obj.Sense() == quadprog.Minimize {
		dst.Minimize(offset, linear, quadratic)
	} else {
		dst.Maximize(offset, linear, quadratic)
	}

	return dst, &Conversion{src: src, penalty: penalty}, nil
}

// Decode converts a result computed against the unconstrained program back
// to the terms of the source program. The assignment is substituted into the
// source program; the decoded objective value is the source objective at the
// assignment, without penalty terms, and the decoded status reports whether
// the assignment satisfies every source constraint.
//
// Decode returns ErrDimensionMismatch if the result's value count differs
// from the source program's variable count.
func (c *Conversion) Decode(r quadprog.Result) (quadprog.Result, error) {
	if len(r.X) != c.src.NumVariables() {
		return quadprog.Result{}, fmt.Errorf("result has %d values, source program has %d variables: %w",
			len(r.X), c.src.NumVariables(), ErrDimensionMismatch)
	}

	fixed := make(map[quadprog.VarIndex]float64, len(r.X))
	for i, val := range r.X {
		fixed[quadprog.VarIndex(i)] = val
	}
	substituted, err := c.src.SubstituteVariables(fixed)
	if err != nil {
		return quadprog.Result{}, err
	}

	decoded := quadprog.Result{
		X:    append([]float64(nil), r.X...),
		Fval: substituted.Objective().Offset(),
	}
	if substituted.Status() == quadprog.StatusValid {
		decoded.Status = quadprog.ResultSuccess
	} else {
		decoded.Status = quadprog.ResultInfeasible
	}

	return decoded, nil
}

// autoPenalty computes the default penalty factor for a program: 1 plus the
// sum of the absolute values of every objective coefficient, summed exactly.
// Bounded variables limit the magnitude of every objective term by its
// coefficient, so the sum bounds the largest possible swing of the
// unpenalized objective, and with integral constraint coefficients any
// violation changes each penalty term by at least 1. The bound ignores
// cross-terms between penalty terms of overlapping constraints and may
// understate the factor needed when many constraints share variables.
//
// If any constraint coefficient or right-hand side is fractional, the
// unit-violation assumption breaks down and the fixed defaultPenalty is
// returned instead, with a logged advisory.
func autoPenalty(p *quadprog.QuadraticProgram) float64 {
	for _, c := range p.LinearConstraints() {
		if !isIntegral(c.RHS()) {
			return fallbackPenalty()
		}
		for _, coef := range c.Row() {
			if !isIntegral(coef) {
				return fallbackPenalty()
			}
		}
	}

	obj := p.Objective()
	terms := []float64{1.0}
	for _, coef := range obj.LinearTerms() {
		terms = append(terms, math.Abs(coef))
	}
	for _, coef := range obj.QuadraticTerms() {
		terms = append(terms, math.Abs(coef))
	}

	return fsum(terms)
}

func fallbackPenalty() float64 {
	log.Warningf("using %g for the penalty factor because a constraint has a fractional coefficient; "+
		"the value could be too small, if so set the penalty factor manually", defaultPenalty)
	return defaultPenalty
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f)
}
