package value

// Codec provides implementations of Serializer and Deserializer for one data
// format.
type Codec interface {
	// Name identifies the format, e.g. "json".
	Name() string
	Serializer() Serializer
	Deserializer([]byte) Deserializer
}

// Serializer implements the marshaling of values to an unspecified data
// format, which is determined by the implementation.
//
// Maps are written as WriteMap(n), then n key/value pairs where each key and
// each value is a complete write (a scalar or a closed container), then
// CloseMap. Arrays follow the same shape with single items.
//
// Write methods do not return errors. The first failure is retained and
// reported by Bytes, and later writes are ignored.
type Serializer interface {
	// Bytes returns the encoded output, or the first error encountered.
	Bytes() ([]byte, error)

	WriteNil()
	WriteBool(bool)
	WriteInt64(int64)
	WriteUint64(uint64)
	WriteFloat64(float64)
	WriteString(string)
	WriteBinary([]byte)

	WriteArray(n int)
	CloseArray()

	WriteMap(n int)
	CloseMap()
}

// Deserializer implements the unmarshaling of values from some unspecified
// data format.
type Deserializer interface {
	// PeekKind reports the kind of the next value without consuming it.
	PeekKind() (Kind, error)

	ReadNil() error
	ReadBool() (bool, error)
	ReadInt64() (int64, error)
	ReadUint64() (uint64, error)
	ReadFloat64() (float64, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)

	// ReadArray consumes the start of an array and returns the number of
	// items when the format knows it up front, -1 otherwise.
	ReadArray() (int, error)
	// returns true if there's another item in the array, false at the end and
	// an error if a decode error is encountered. use other deserializer
	// methods to read the item.
	ReadArrayItem() (bool, error)

	// ReadMap consumes the start of a map and returns a size hint, -1 when
	// unknown. The hint may be wrong and must not be trusted for allocation
	// beyond a cap.
	ReadMap() (int, error)
	// returns true if there's another entry in the map, false at the end and
	// an error if a decode error is encountered. the caller then reads the
	// key followed by the value.
	ReadMapEntry() (bool, error)
}

// Finisher is implemented by Deserializers that can check the input was
// consumed completely.
type Finisher interface {
	// Finish returns an error wrapping ErrTrailingData when input remains
	// after the value read so far, or an error when a container is still
	// open.
	Finish() error
}

// Serializable is an entity that can describe itself to a Serializer.
type Serializable interface {
	Serialize(Serializer)
}

// Deserializable is an entity that can unmarshal itself from a Deserializer.
type Deserializable interface {
	Deserialize(Deserializer) error
}

// ReadArray is a utility for Deserializer consumers that calls itemFn once
// per array item.
func ReadArray(d Deserializer, itemFn func() error) error {
	if _, err := d.ReadArray(); err != nil {
		return err
	}

	for {
		ok, err := d.ReadArrayItem()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := itemFn(); err != nil {
			return err
		}
	}
}

// ReadMap is a utility for Deserializer consumers that calls entryFn once per
// map entry. entryFn must read both the key and the value.
func ReadMap(d Deserializer, entryFn func() error) error {
	if _, err := d.ReadMap(); err != nil {
		return err
	}

	for {
		ok, err := d.ReadMapEntry()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := entryFn(); err != nil {
			return err
		}
	}
}
