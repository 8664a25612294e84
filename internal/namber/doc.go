// Package namber implements a number type that can be unavailable.
//
// Upstream statistical data routinely contains suppressed, missing or
// non-numeric cells. Rather than failing, such cells become unavailable
// Nambers that carry why they are unavailable, and every arithmetic
// operator propagates that state. Once a value is ingested no raw float64
// crosses a component boundary.
package namber
