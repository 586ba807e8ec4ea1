// Package value provides a dynamically typed, JSON-like value used to carry
// structured data between sources that disagree on types: database rows, JSON
// documents, RPC payloads.
//
// The central type is Map, an insertion-ordered map keyed by Value itself.
// Keys may be any variant, including arrays and nested maps, so equality and
// hashing are defined structurally over every variant (see Equal, Hash and
// Compare).
//
// Values are not tied to a data format. A Codec supplies a Serializer and a
// Deserializer for a concrete format, and Marshal and Unmarshal drive them.
// Implementations live under encoding/.
//
//	m := value.NewMap()
//	m.Insert(value.String("a"), value.Int(1))
//	*m.IndexMut("b") = value.Bool(true)
//
//	p, err := value.Marshal(&json.Codec{}, m)
package value
