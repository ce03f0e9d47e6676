// Package launch builds immutable launch requests.
//
// A Builder accumulates typed initializers in any order. Nothing is checked
// and no OS resource is touched until Build, which validates the whole set
// at once: repeating an initializer with the same value is harmless,
// repeating it with a different value is a conflict, and initializers the
// target platform cannot honor are rejected.
//
//	req, err := launch.NewBuilder("/bin/sh").
//		Args("-c", "exit 42").
//		Stdout(launch.Discard()).
//		Group().
//		Build()
package launch
