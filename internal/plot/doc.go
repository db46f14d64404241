// Package plot renders query result datasets as charts, with an explicit
// decision path for falling back to a plain table. Chart parameters arrive
// as a flat JSON object produced by the language model; rendering returns a
// tagged single/multiple chart handle and a typed error instead of relying
// on panics or runtime type probing.
package plot
