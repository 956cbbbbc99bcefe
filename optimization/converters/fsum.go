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

package converters

import "math"

// fsum returns the sum of vals independent of their ordering, using
// Shewchuk's algorithm: the running sum is kept as a list of non-overlapping
// partial sums whose exact total is the exact total of the inputs. Values
// must be finite.
func fsum(vals []float64) float64 {
	var partials []float64
	for _, x := range vals {
		i := 0
		for _, y := range partials {
			if math.Abs(x) < math.Abs(y) {
				x, y = y, x
			}
			hi := x + y
			lo := y - (hi - x)
			if lo != 0 {
				partials[i] = lo
				i++
			}
			x = hi
		}
		partials = append(partials[:i], x)
	}

	// The partials are ordered by increasing magnitude and do not overlap,
	// so adding them smallest first loses nothing until the final rounding.
	var sum float64
	for _, p := range partials {
		sum += p
	}
	return sum
}
