package yaml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valuekit/value-go"
)

const defaultIndent = 2

// Options configures a Serializer.
type Options struct {
	Indent int
}

// Serializer implements marshaling of values to YAML.
type Serializer struct {
	root   *yaml.Node
	head   []*yaml.Node
	indent int
	err    error
}

var _ value.Serializer = (*Serializer)(nil)

// NewSerializer returns an empty YAML serializer.
func NewSerializer(optFns ...func(*Options)) *Serializer {
	o := Options{Indent: defaultIndent}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Indent <= 0 {
		o.Indent = defaultIndent
	}
	return &Serializer{indent: o.Indent}
}

// Bytes renders the document, or returns the first error.
func (s *Serializer) Bytes() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.head) != 0 {
		return nil, fmt.Errorf("yaml: %d unclosed containers", len(s.head))
	}
	if s.root == nil {
		return nil, fmt.Errorf("yaml: nothing written")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(s.indent)
	if err := enc.Encode(s.root); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Serializer) add(n *yaml.Node) {
	if len(s.head) == 0 {
		if s.root != nil && s.err == nil {
			s.err = fmt.Errorf("yaml: more than one top-level value")
		}
		s.root = n
		return
	}

	top := s.head[len(s.head)-1]
	top.Content = append(top.Content, n)
}

func (s *Serializer) scalar(tag, v string) {
	s.add(&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v})
}

func (s *Serializer) WriteNil() {
	s.scalar("!!null", "null")
}

func (s *Serializer) WriteBool(v bool) {
	s.scalar("!!bool", strconv.FormatBool(v))
}

func (s *Serializer) WriteInt64(v int64) {
	s.scalar("!!int", strconv.FormatInt(v, 10))
}

func (s *Serializer) WriteUint64(v uint64) {
	s.scalar("!!int", strconv.FormatUint(v, 10))
}

func (s *Serializer) WriteFloat64(v float64) {
	s.scalar("!!float", formatFloat(v))
}

func (s *Serializer) WriteString(v string) {
	s.scalar("!!str", v)
}

func (s *Serializer) WriteBinary(v []byte) {
	s.scalar("!!binary", base64.StdEncoding.EncodeToString(v))
}

func (s *Serializer) WriteArray(n int) {
	s.open(&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, n)})
}

func (s *Serializer) CloseArray() {
	s.close(yaml.SequenceNode)
}

func (s *Serializer) WriteMap(n int) {
	s.open(&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*n)})
}

func (s *Serializer) CloseMap() {
	s.close(yaml.MappingNode)
}

func (s *Serializer) open(n *yaml.Node) {
	s.add(n)
	s.head = append(s.head, n)
}

func (s *Serializer) close(kind yaml.Kind) {
	n := len(s.head)
	if n == 0 || s.head[n-1].Kind != kind {
		if s.err == nil {
			s.err = fmt.Errorf("yaml: close without matching open container")
		}
		return
	}

	top := s.head[n-1]
	s.head = s.head[:n-1]
	if kind == yaml.MappingNode && len(top.Content)%2 != 0 && s.err == nil {
		s.err = fmt.Errorf("yaml: mapping closed after key without value")
	}
}

// formatFloat keeps a fraction or exponent so the scalar resolves as a float.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
