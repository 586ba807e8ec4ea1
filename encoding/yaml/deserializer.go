package yaml

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valuekit/value-go"
)

// maxAliasExpansions bounds alias resolution, which also stops
// self-referencing anchors.
const maxAliasExpansions = 10000

type frame struct {
	node *yaml.Node
	pos  int
}

// Deserializer implements unmarshaling of a YAML document into values.
type Deserializer struct {
	dec     *yaml.Decoder
	root    *yaml.Node
	err     error
	done    bool
	head    []frame
	aliases int
}

var (
	_ value.Deserializer = (*Deserializer)(nil)
	_ value.Finisher     = (*Deserializer)(nil)
)

// NewDeserializer parses the first document in p and returns a deserializer
// over it. Parse errors are reported by the first read. Empty input reads
// as null.
func NewDeserializer(p []byte) *Deserializer {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(p))
	err := dec.Decode(&root)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return &Deserializer{dec: dec, root: &root, err: err}
}

// Finish reports an error if the document was not read completely or if
// the stream holds another document.
func (d *Deserializer) Finish() error {
	if d.err != nil {
		return fmt.Errorf("yaml: %w", d.err)
	}
	if len(d.head) != 0 || !d.done {
		return fmt.Errorf("yaml: document not fully read")
	}

	var next yaml.Node
	err := d.dec.Decode(&next)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("yaml: %w: %v", value.ErrTrailingData, err)
	}
	return fmt.Errorf("yaml: %w: line %d: another document", value.ErrTrailingData, next.Line)
}

func (d *Deserializer) resolve(n *yaml.Node) (*yaml.Node, error) {
	for {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			d.aliases++
			if d.aliases > maxAliasExpansions || n.Alias == nil {
				return nil, fmt.Errorf("yaml: too many alias expansions")
			}
			n = n.Alias
		case 0:
			// empty input
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}, nil
		default:
			return n, nil
		}
	}
}

// peek returns the next node without consuming it.
func (d *Deserializer) peek() (*yaml.Node, error) {
	if d.err != nil {
		return nil, fmt.Errorf("yaml: %w", d.err)
	}

	if len(d.head) == 0 {
		if d.done {
			return nil, fmt.Errorf("yaml: read past end of document")
		}
		return d.resolve(d.root)
	}

	top := d.head[len(d.head)-1]
	if top.pos >= len(top.node.Content) {
		return nil, fmt.Errorf("yaml: read past end of container")
	}
	return d.resolve(top.node.Content[top.pos])
}

func (d *Deserializer) consume() {
	if len(d.head) == 0 {
		d.done = true
		return
	}
	d.head[len(d.head)-1].pos++
}

// scalar consumes the next node, which must be a scalar, and decodes it
// into out.
func (d *Deserializer) scalar(out any) (*yaml.Node, error) {
	n, err := d.peek()
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("yaml: line %d: expected scalar, got node kind %d", n.Line, n.Kind)
	}
	if out != nil {
		if err := n.Decode(out); err != nil {
			return nil, err
		}
	}
	d.consume()
	return n, nil
}

func (d *Deserializer) PeekKind() (value.Kind, error) {
	n, err := d.peek()
	if err != nil {
		return 0, err
	}

	switch n.Kind {
	case yaml.SequenceNode:
		return value.KindArray, nil
	case yaml.MappingNode:
		return value.KindMap, nil
	}

	switch n.ShortTag() {
	case "!!null":
		return value.KindNull, nil
	case "!!bool":
		return value.KindBool, nil
	case "!!int":
		var i int64
		if n.Decode(&i) == nil {
			return value.KindInt, nil
		}
		var u uint64
		if n.Decode(&u) == nil {
			return value.KindUint, nil
		}
		return value.KindFloat, nil
	case "!!float":
		return value.KindFloat, nil
	case "!!binary":
		return value.KindBinary, nil
	default:
		// !!str, !!timestamp and application tags keep their text
		return value.KindString, nil
	}
}

func (d *Deserializer) ReadNil() error {
	n, err := d.peek()
	if err != nil {
		return err
	}
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!null" {
		return fmt.Errorf("yaml: line %d: expected null, got %s", n.Line, n.ShortTag())
	}
	d.consume()
	return nil
}

func (d *Deserializer) ReadBool() (bool, error) {
	var b bool
	_, err := d.scalar(&b)
	return b, err
}

func (d *Deserializer) ReadInt64() (int64, error) {
	var i int64
	_, err := d.scalar(&i)
	return i, err
}

func (d *Deserializer) ReadUint64() (uint64, error) {
	var u uint64
	_, err := d.scalar(&u)
	return u, err
}

func (d *Deserializer) ReadFloat64() (float64, error) {
	var f float64
	_, err := d.scalar(&f)
	return f, err
}

// ReadString returns the text of any scalar.
func (d *Deserializer) ReadString() (string, error) {
	n, err := d.scalar(nil)
	if err != nil {
		return "", err
	}
	return n.Value, nil
}

// ReadBinary decodes the base64 text of a !!binary scalar. Line breaks are
// allowed.
func (d *Deserializer) ReadBinary() ([]byte, error) {
	n, err := d.scalar(nil)
	if err != nil {
		return nil, err
	}

	b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
	if err != nil {
		return nil, fmt.Errorf("yaml: line %d: decode binary: %w", n.Line, err)
	}
	return b, nil
}

func (d *Deserializer) ReadArray() (int, error) {
	return d.open(yaml.SequenceNode, 1)
}

func (d *Deserializer) ReadArrayItem() (bool, error) {
	return d.more(yaml.SequenceNode)
}

func (d *Deserializer) ReadMap() (int, error) {
	return d.open(yaml.MappingNode, 2)
}

func (d *Deserializer) ReadMapEntry() (bool, error) {
	return d.more(yaml.MappingNode)
}

func (d *Deserializer) open(kind yaml.Kind, per int) (int, error) {
	n, err := d.peek()
	if err != nil {
		return 0, err
	}
	if n.Kind != kind {
		return 0, fmt.Errorf("yaml: line %d: expected node kind %d, got %d", n.Line, kind, n.Kind)
	}

	d.consume()
	d.head = append(d.head, frame{node: n})
	return len(n.Content) / per, nil
}

func (d *Deserializer) more(kind yaml.Kind) (bool, error) {
	if len(d.head) == 0 || d.head[len(d.head)-1].node.Kind != kind {
		return false, fmt.Errorf("yaml: no open container")
	}

	top := d.head[len(d.head)-1]
	if top.pos < len(top.node.Content) {
		return true, nil
	}
	d.head = d.head[:len(d.head)-1]
	return false, nil
}
