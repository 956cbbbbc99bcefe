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

import "fmt"

// ResultStatus is the termination state of an optimization run.
type ResultStatus int

// The result states.
const (
	ResultSuccess ResultStatus = iota
	ResultFailure
	ResultInfeasible
)

func (s ResultStatus) String() string {
	switch s {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFailure:
		return "FAILURE"
	case ResultInfeasible:
		return "INFEASIBLE"
	}
	return fmt.Sprintf("ResultStatus(%d)", int(s))
}

// Result is the outcome of optimizing a quadratic program. X holds one value
// per variable, in the program's variable order. Fval is the objective value
// at X.
type Result struct {
	X      []float64
	Fval   float64
	Status ResultStatus
}
