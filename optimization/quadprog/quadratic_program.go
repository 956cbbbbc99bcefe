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

// Package quadprog offers an API to build quadratically constrained models
// with a quadratic objective and linear constraints.
//
// The `QuadraticProgram` struct holds the model and provides helper methods
// for adding variables and constraints. The `Variable` struct is a reference
// to a specific variable in the program. Coefficients are stored sparsely,
// keyed by `VarIndex` for linear terms and by ordered `QuadKey` pairs for
// quadratic terms.
package quadprog

import (
	"fmt"
)

type (
	// VarIndex is the index of a variable in the quadratic program. Variable
	// order is fixed at creation time and defines the index<->value
	// correspondence used by results.
	VarIndex int32
	// ConstrIndex is the index of a linear constraint in the quadratic program.
	ConstrIndex int32
)

// QuadKey identifies one ordered pair of variables in a quadratic coefficient
// map. Both orderings of a pair may hold entries independently; the effective
// coefficient of the pair is the sum of both entries.
type QuadKey struct {
	First  VarIndex
	Second VarIndex
}

// VarKind is the kind of a variable in the quadratic program.
type VarKind int

// The variable kinds a quadratic program supports.
const (
	Continuous VarKind = iota
	Binary
	Integer
)

func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "CONTINUOUS"
	case Binary:
		return "BINARY"
	case Integer:
		return "INTEGER"
	}
	return fmt.Sprintf("VarKind(%d)", int(k))
}

// ObjectiveSense is the optimization direction of an objective.
type ObjectiveSense int

// The supported objective senses.
const (
	Minimize ObjectiveSense = iota
	Maximize
)

func (s ObjectiveSense) String() string {
	if s == Maximize {
		return "MAXIMIZE"
	}
	return "MINIMIZE"
}

// ConstraintSense is the comparison sense of a linear constraint.
type ConstraintSense int

// The supported constraint senses.
const (
	Equal ConstraintSense = iota
	LessEqual
	GreaterEqual
)

func (s ConstraintSense) String() string {
	switch s {
	case Equal:
		return "=="
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	}
	return fmt.Sprintf("ConstraintSense(%d)", int(s))
}

// Status is the validity state of a quadratic program. It is set to
// StatusInfeasible by operations that detect an unsatisfiable program, such
// as substituting a variable assignment that violates a constraint.
type Status int

// The program states.
const (
	StatusValid Status = iota
	StatusInfeasible
)

func (s Status) String() string {
	if s == StatusInfeasible {
		return "INFEASIBLE"
	}
	return "VALID"
}

type varData struct {
	name string
	kind VarKind
	lb   float64
	ub   float64
}

// Variable is a reference to a variable in a quadratic program.
type Variable struct {
	ind VarIndex
	qp  *QuadraticProgram
}

// Name returns the name of the variable.
func (v Variable) Name() string {
	return v.qp.vars[v.ind].name
}

// Kind returns the kind of the variable.
func (v Variable) Kind() VarKind {
	return v.qp.vars[v.ind].kind
}

// LowerBound returns the lower bound of the variable.
func (v Variable) LowerBound() float64 {
	return v.qp.vars[v.ind].lb
}

// UpperBound returns the upper bound of the variable.
func (v Variable) UpperBound() float64 {
	return v.qp.vars[v.ind].ub
}

// Index returns the index of the variable.
func (v Variable) Index() VarIndex {
	return v.ind
}

// Objective is the quadratic objective of a program: an optimization sense, a
// constant offset, sparse linear coefficients keyed by variable index, and
// sparse quadratic coefficients keyed by ordered variable pairs.
type Objective struct {
	sense     ObjectiveSense
	offset    float64
	linear    map[VarIndex]float64
	quadratic map[QuadKey]float64
}

// Sense returns the optimization sense of the objective.
func (o *Objective) Sense() ObjectiveSense {
	return o.sense
}

// Offset returns the constant offset of the objective.
func (o *Objective) Offset() float64 {
	return o.offset
}

// LinearTerms returns a copy of the sparse linear coefficient map.
func (o *Objective) LinearTerms() map[VarIndex]float64 {
	terms := make(map[VarIndex]float64, len(o.linear))
	for ind, coef := range o.linear {
		terms[ind] = coef
	}
	return terms
}

// QuadraticTerms returns a copy of the sparse quadratic coefficient map.
func (o *Objective) QuadraticTerms() map[QuadKey]float64 {
	terms := make(map[QuadKey]float64, len(o.quadratic))
	for key, coef := range o.quadratic {
		terms[key] = coef
	}
	return terms
}

// Value evaluates the objective at the point `x`. The length of `x` must be
// the number of variables in the program, in variable order. Each stored
// quadratic entry contributes once, so split (j,k)/(k,j) entries add up to
// the effective pair coefficient.
func (o *Objective) Value(x []float64) float64 {
	v := o.offset
	for ind, coef := range o.linear {
		v += coef * x[ind]
	}
	for key, coef := range o.quadratic {
		v += coef * x[key.First] * x[key.Second]
	}
	return v
}

// LinearConstraint is one linear constraint of a program: `row <sense> rhs`,
// where the row is a sparse variable->coefficient map.
type LinearConstraint struct {
	name  string
	sense ConstraintSense
	rhs   float64
	row   map[VarIndex]float64
}

// Name returns the name of the constraint.
func (c *LinearConstraint) Name() string {
	return c.name
}

// Sense returns the comparison sense of the constraint.
func (c *LinearConstraint) Sense() ConstraintSense {
	return c.sense
}

// RHS returns the right-hand-side constant of the constraint.
func (c *LinearConstraint) RHS() float64 {
	return c.rhs
}

// Row returns a copy of the sparse left-hand-side coefficient map.
func (c *LinearConstraint) Row() map[VarIndex]float64 {
	row := make(map[VarIndex]float64, len(c.row))
	for ind, coef := range c.row {
		row[ind] = coef
	}
	return row
}

// Value evaluates the left-hand side of the constraint at the point `x`.
// The length of `x` must be the number of variables in the program.
func (c *LinearConstraint) Value(x []float64) float64 {
	var v float64
	for ind, coef := range c.row {
		v += coef * x[ind]
	}
	return v
}

// QuadraticProgram holds an optimization model with a quadratic objective and
// linear constraints. Variables and constraints are stored in creation order.
type QuadraticProgram struct {
	name        string
	vars        []varData
	varIndex    map[string]VarIndex
	objective   Objective
	constraints []*LinearConstraint
	constrNames map[string]ConstrIndex
	status      Status
}

// New creates an empty quadratic program. The zero objective minimizes the
// constant 0.
func New(name string) *QuadraticProgram {
	return &QuadraticProgram{
		name:     name,
		varIndex: make(map[string]VarIndex),
		objective: Objective{
			linear:    make(map[VarIndex]float64),
			quadratic: make(map[QuadKey]float64),
		},
		constrNames: make(map[string]ConstrIndex),
	}
}

// Name returns the name of the program.
func (qp *QuadraticProgram) Name() string {
	return qp.name
}

// SetName sets the name of the program.
func (qp *QuadraticProgram) SetName(name string) {
	qp.name = name
}

// Status returns the validity state of the program.
func (qp *QuadraticProgram) Status() Status {
	return qp.status
}

// NumVariables returns the number of variables in the program.
func (qp *QuadraticProgram) NumVariables() int {
	return len(qp.vars)
}

// Variables returns all variables of the program in creation order.
func (qp *QuadraticProgram) Variables() []Variable {
	vars := make([]Variable, len(qp.vars))
	for i := range qp.vars {
		vars[i] = Variable{ind: VarIndex(i), qp: qp}
	}
	return vars
}

// Variable returns the variable at index `ind`.
func (qp *QuadraticProgram) Variable(ind VarIndex) (Variable, error) {
	if ind < 0 || int(ind) >= len(qp.vars) {
		return Variable{}, fmt.Errorf("no variable with index %v", ind)
	}
	return Variable{ind: ind, qp: qp}, nil
}

// LookupVariable returns the variable with the given name, and false if no
// variable with that name exists.
func (qp *QuadraticProgram) LookupVariable(name string) (Variable, bool) {
	ind, ok := qp.varIndex[name]
	if !ok {
		return Variable{}, false
	}
	return Variable{ind: ind, qp: qp}, true
}

// NewContinuousVar creates a new continuous variable with the bounds
// `[lb,ub]`. Make `name` an empty string if you would like a unique variable
// name to be generated. Otherwise an error is returned if the provided
// `name` already exists as a variable name.
func (qp *QuadraticProgram) NewContinuousVar(lb, ub float64, name string) (Variable, error) {
	return qp.addVar(Continuous, lb, ub, name)
}

// NewBinaryVar creates a new binary variable. Binary variables are bounded
// `[0,1]`. Naming follows the same rules as NewContinuousVar.
func (qp *QuadraticProgram) NewBinaryVar(name string) (Variable, error) {
	return qp.addVar(Binary, 0, 1, name)
}

// NewIntegerVar creates a new integer variable with the bounds `[lb,ub]`.
// Naming follows the same rules as NewContinuousVar.
func (qp *QuadraticProgram) NewIntegerVar(lb, ub float64, name string) (Variable, error) {
	return qp.addVar(Integer, lb, ub, name)
}

func (qp *QuadraticProgram) addVar(kind VarKind, lb, ub float64, name string) (Variable, error) {
	if lb > ub {
		return Variable{}, fmt.Errorf("variable %q has lower bound %v greater than upper bound %v", name, lb, ub)
	}
	ind := VarIndex(len(qp.vars))
	if name == "" {
		name = fmt.Sprintf("x%d", ind)
	}
	if _, ok := qp.varIndex[name]; ok {
		return Variable{}, fmt.Errorf("variable with name %s already exists", name)
	}

	qp.vars = append(qp.vars, varData{name: name, kind: kind, lb: lb, ub: ub})
	qp.varIndex[name] = ind

	return Variable{ind: ind, qp: qp}, nil
}

// Minimize installs a minimization objective with the given constant offset
// and sparse linear and quadratic coefficients, replacing any previous
// objective. The coefficient maps are copied; either may be nil.
func (qp *QuadraticProgram) Minimize(offset float64, linear map[VarIndex]float64, quadratic map[QuadKey]float64) {
	qp.setObjective(Minimize, offset, linear, quadratic)
}

// Maximize installs a maximization objective with the given constant offset
// and sparse linear and quadratic coefficients, replacing any previous
// objective. The coefficient maps are copied; either may be nil.
func (qp *QuadraticProgram) Maximize(offset float64, linear map[VarIndex]float64, quadratic map[QuadKey]float64) {
	qp.setObjective(Maximize, offset, linear, quadratic)
}

func (qp *QuadraticProgram) setObjective(sense ObjectiveSense, offset float64, linear map[VarIndex]float64, quadratic map[QuadKey]float64) {
	obj := Objective{
		sense:     sense,
		offset:    offset,
		linear:    make(map[VarIndex]float64, len(linear)),
		quadratic: make(map[QuadKey]float64, len(quadratic)),
	}
	for ind, coef := range linear {
		obj.linear[ind] = coef
	}
	for key, coef := range quadratic {
		obj.quadratic[key] = coef
	}
	qp.objective = obj
}

// Objective returns the objective of the program.
func (qp *QuadraticProgram) Objective() *Objective {
	return &qp.objective
}

// AddLinearConstraint adds the linear constraint `row <sense> rhs` to the
// program. The row map is copied and every index in it must refer to a
// variable of the program. Make `name` an empty string if you would like a
// unique constraint name to be generated. Otherwise an error is returned if
// the provided `name` already exists as a constraint name.
func (qp *QuadraticProgram) AddLinearConstraint(row map[VarIndex]float64, sense ConstraintSense, rhs float64, name string) (*LinearConstraint, error) {
	ind := ConstrIndex(len(qp.constraints))
	if name == "" {
		name = fmt.Sprintf("c%d", ind)
	}
	if _, ok := qp.constrNames[name]; ok {
		return nil, fmt.Errorf("constraint with name %s already exists", name)
	}

	c := &LinearConstraint{
		name:  name,
		sense: sense,
		rhs:   rhs,
		row:   make(map[VarIndex]float64, len(row)),
	}
	for vi, coef := range row {
		if vi < 0 || int(vi) >= len(qp.vars) {
			return nil, fmt.Errorf("constraint %s refers to unknown variable index %v", name, vi)
		}
		c.row[vi] = coef
	}

	qp.constraints = append(qp.constraints, c)
	qp.constrNames[name] = ind

	return c, nil
}

// NumLinearConstraints returns the number of linear constraints in the
// program.
func (qp *QuadraticProgram) NumLinearConstraints() int {
	return len(qp.constraints)
}

// LinearConstraints returns all linear constraints of the program in creation
// order. The returned slice is a copy but the constraints are shared;
// callers must not modify them.
func (qp *QuadraticProgram) LinearConstraints() []*LinearConstraint {
	constraints := make([]*LinearConstraint, len(qp.constraints))
	copy(constraints, qp.constraints)
	return constraints
}

// Copy returns a deep copy of the program. The copy shares no state with the
// original; variables of the copy are reachable through the copy only.
func (qp *QuadraticProgram) Copy() *QuadraticProgram {
	cp := New(qp.name)
	cp.status = qp.status

	cp.vars = make([]varData, len(qp.vars))
	copy(cp.vars, qp.vars)
	for name, ind := range qp.varIndex {
		cp.varIndex[name] = ind
	}

	cp.setObjective(qp.objective.sense, qp.objective.offset, qp.objective.linear, qp.objective.quadratic)

	cp.constraints = make([]*LinearConstraint, len(qp.constraints))
	for i, c := range qp.constraints {
		cc := &LinearConstraint{
			name:  c.name,
			sense: c.sense,
			rhs:   c.rhs,
			row:   make(map[VarIndex]float64, len(c.row)),
		}
		for ind, coef := range c.row {
			cc.row[ind] = coef
		}
		cp.constraints[i] = cc
	}
	for name, ind := range qp.constrNames {
		cp.constrNames[name] = ind
	}

	return cp
}
