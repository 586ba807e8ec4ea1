package value

import (
	"iter"
	"slices"
	"strings"

	"github.com/fxamacker/circlehash"
)

// Entry is a key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

type entry struct {
	hash  uint64
	key   Value
	value Value
}

// Map is an insertion-ordered mapping from Value to Value with unique keys.
//
// Iteration yields entries in insertion order. Overwriting an existing key
// keeps its position. Remove uses swap-removal: the last entry is moved into
// the vacated slot, so it is O(1) but changes the position of that one entry.
//
// Keys handed out by EntryAt, All, AllMut, Keys and Entries are copies when
// they are Binary, Array or *Map, so modifying them never affects the map.
//
// The zero value is an empty map ready to use. A Map is not safe for
// concurrent mutation.
type Map struct {
	entries []*entry
	index   map[uint64][]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{}
}

// NewMapWithCapacity returns an empty Map sized for n entries.
func NewMapWithCapacity(n int) *Map {
	if n < 0 {
		n = 0
	}
	return &Map{
		entries: make([]*entry, 0, n),
		index:   make(map[uint64][]int, n),
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// IsEmpty reports whether the map has no entries.
func (m *Map) IsEmpty() bool {
	return m.Len() == 0
}

func (m *Map) find(h uint64, k Value) int {
	for _, i := range m.index[h] {
		if Equal(m.entries[i].key, k) {
			return i
		}
	}
	return -1
}

func (m *Map) lookup(k Value) *entry {
	if m.Len() == 0 {
		return nil
	}
	k = orNull(k)
	if i := m.find(Hash(k), k); i >= 0 {
		return m.entries[i]
	}
	return nil
}

// Insert sets the value for k. If k was already present its value is replaced
// in place and the previous value is returned with ok set. Otherwise the entry
// is appended and (nil, false) is returned.
func (m *Map) Insert(k, v Value) (prev Value, ok bool) {
	k, v = orNull(k), orNull(v)
	h := Hash(k)
	if i := m.find(h, k); i >= 0 {
		e := m.entries[i]
		prev, e.value = e.value, v
		return prev, true
	}

	if m.index == nil {
		m.index = make(map[uint64][]int)
	}

	// composite keys are copied, the index must not observe later mutation
	m.entries = append(m.entries, &entry{hash: h, key: Clone(k), value: v})
	m.index[h] = append(m.index[h], len(m.entries)-1)
	return nil, false
}

// Remove deletes k and returns its value, or Null if k was absent.
//
// The last entry is moved into the removed slot.
func (m *Map) Remove(k Value) Value {
	if m.Len() == 0 {
		return Null{}
	}

	k = orNull(k)
	h := Hash(k)
	i := m.find(h, k)
	if i < 0 {
		return Null{}
	}

	removed := m.entries[i]
	m.unindex(h, i)

	last := len(m.entries) - 1
	if i != last {
		moved := m.entries[last]
		m.entries[i] = moved
		bucket := m.index[moved.hash]
		for j, pos := range bucket {
			if pos == last {
				bucket[j] = i
				break
			}
		}
	}
	m.entries[last] = nil
	m.entries = m.entries[:last]

	return orNull(removed.value)
}

func (m *Map) unindex(h uint64, pos int) {
	bucket := m.index[h]
	for j, p := range bucket {
		if p == pos {
			bucket = slices.Delete(bucket, j, j+1)
			break
		}
	}
	if len(bucket) == 0 {
		delete(m.index, h)
		return
	}
	m.index[h] = bucket
}

// Get returns the value for k, or Null if k is absent. A missing key and a key
// holding Null are indistinguishable here; use Contains or GetMut to tell them
// apart.
func (m *Map) Get(k Value) Value {
	if e := m.lookup(k); e != nil {
		return orNull(e.value)
	}
	return Null{}
}

// GetMut returns a handle to the value stored for k. It returns (nil, false)
// when k is absent and never inserts.
//
// The handle stays valid across later inserts. After k is removed, writes
// through it no longer reach the map.
func (m *Map) GetMut(k Value) (*Value, bool) {
	if e := m.lookup(k); e != nil {
		return &e.value, true
	}
	return nil, false
}

// Contains reports whether k is present.
func (m *Map) Contains(k Value) bool {
	return m.lookup(k) != nil
}

// Index returns the value stored under the String key, or Null.
func (m *Map) Index(key string) Value {
	return m.Get(String(key))
}

// IndexInt returns the value stored under the Int key, or Null.
func (m *Map) IndexInt(key int64) Value {
	return m.Get(Int(key))
}

// IndexMut returns a handle to the value stored under the String key,
// inserting Null first if the key is absent:
//
//	*m.IndexMut("count") = value.Int(1)
func (m *Map) IndexMut(key string) *Value {
	return m.entryMut(String(key))
}

// IndexIntMut is IndexMut for Int keys.
func (m *Map) IndexIntMut(key int64) *Value {
	return m.entryMut(Int(key))
}

func (m *Map) entryMut(k Value) *Value {
	if !m.Contains(k) {
		m.Insert(k, Null{})
	}
	p, ok := m.GetMut(k)
	if !ok {
		panic("value: map index out of sync for key " + k.String())
	}
	return p
}

// EntryAt returns the entry at position i of the iteration order.
func (m *Map) EntryAt(i int) (k, v Value, ok bool) {
	if i < 0 || i >= m.Len() {
		return nil, nil, false
	}
	e := m.entries[i]
	return Clone(e.key), e.value, true
}

// All iterates the entries in order.
func (m *Map) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(Clone(e.key), e.value) {
				return
			}
		}
	}
}

// AllMut iterates the entries in order, yielding a handle to each value.
// The map must not be modified structurally during iteration.
func (m *Map) AllMut() iter.Seq2[Value, *Value] {
	return func(yield func(Value, *Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(Clone(e.key), &e.value) {
				return
			}
		}
	}
}

// Keys iterates the keys in order.
func (m *Map) Keys() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, e := range m.entryList() {
			if !yield(Clone(e.key)) {
				return
			}
		}
	}
}

// Values iterates the values in order.
func (m *Map) Values() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, e := range m.entryList() {
			if !yield(e.value) {
				return
			}
		}
	}
}

// Drain empties the map and iterates the entries it held, in order. The
// yielded keys are no longer indexed and belong to the caller. Entries not
// consumed because iteration stopped early are discarded.
func (m *Map) Drain() iter.Seq2[Value, Value] {
	var entries []*entry
	if m != nil {
		entries = m.entries
		m.entries = nil
		m.index = nil
	}
	return func(yield func(Value, Value) bool) {
		for _, e := range entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Entries returns a snapshot of the entries in order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	for k, v := range m.All() {
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// stored returns the entries with the map's own keys, for read-only use.
func (m *Map) stored() []Entry {
	out := make([]Entry, 0, m.Len())
	for _, e := range m.entryList() {
		out = append(out, Entry{Key: e.key, Value: e.value})
	}
	return out
}

func (m *Map) sortedEntries() []Entry {
	out := m.stored()
	slices.SortFunc(out, func(a, b Entry) int {
		return Compare(a.Key, b.Key)
	})
	return out
}

// Clone returns a deep copy of the map with the same iteration order.
func (m *Map) Clone() *Map {
	out := NewMapWithCapacity(m.Len())
	for _, e := range m.entryList() {
		out.Insert(e.key, Clone(e.value))
	}
	return out
}

// Equal reports whether both maps hold the same keys mapped to equal values.
// Iteration order is not considered.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, e := range m.entryList() {
		oe := o.lookup(e.key)
		if oe == nil || !Equal(e.value, oe.value) {
			return false
		}
	}
	return true
}

func (m *Map) entryList() []*entry {
	if m == nil {
		return nil
	}
	return m.entries
}

// Hash returns an order independent hash of the map's entries.
func (m *Map) Hash() uint64 {
	var sum uint64
	for _, e := range m.entryList() {
		sum += circlehash.Hash64Uint64x2(e.hash, Hash(orNull(e.value)), hashSeed)
	}
	return circlehash.Hash64Uint64x2(uint64(KindMap)<<32|uint64(m.Len()), sum, hashSeed)
}

// String renders the map as {k1:v1,k2:v2} in iteration order.
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range m.entryList() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e.key.String())
		sb.WriteByte(':')
		sb.WriteString(orNull(e.value).String())
	}
	sb.WriteByte('}')
	return sb.String()
}
