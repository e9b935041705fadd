// Package typehandling provides a heterogeneous map: a container whose
// values have different types under one key type, with the value type
// checked at every access.
//
// A Key pairs an identifier with a value type fixed at compile time:
//
//	exposure := typehandling.MakeKey[float64]("exposure")
//	m := typehandling.NewSimpleHeteroMap[string]()
//	typehandling.Insert(m, exposure, 30.0)
//	p, err := typehandling.At(m, exposure)
//
// A map holds at most one value per identifier, whatever its type.
// Looking a value up with a key of the wrong type fails exactly like a
// missing identifier, with an OutOfRangeError.
//
// Values are bool, int, float32, float64, string, or a Storable object.
// Storable objects are inserted either by value, in which case the map
// keeps its own clone, or shared, in which case the map and the caller
// hold the same object.
//
// Map implementations supply three primitives (UnsafeLookup,
// UnsafeInsert and UnsafeErase) and the typed operations in this package
// are built on them.
package typehandling
