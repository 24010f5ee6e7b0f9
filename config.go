package antixss

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hangy/AntiXss-sub003/internal/builder"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/outbuf"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textstore"
)

// Limits bound the resources a single conversion may use. A document that
// needs more fails with ErrDocumentTooComplex.
type Limits struct {
	// MaxNesting is the number of elements that may be open at once.
	MaxNesting int `yaml:"max_nesting"`

	// NodePlanes and NodePlaneSize bound the node store. The plane size
	// must be a power of two of at least 16.
	NodePlanes    int `yaml:"node_planes"`
	NodePlaneSize int `yaml:"node_plane_size"`

	// TextSegments and TextSegmentSize bound the text store, in cells of
	// one character each.
	TextSegments    int `yaml:"text_segments"`
	TextSegmentSize int `yaml:"text_segment_size"`

	// ValuePlanes and ValuePlaneSize bound the store of string, list and
	// style property values.
	ValuePlanes    int `yaml:"value_planes"`
	ValuePlaneSize int `yaml:"value_plane_size"`

	// UndoEntries bounds the formatting state kept while writing output.
	UndoEntries int `yaml:"undo_entries"`
}

// Config configures a Converter.
type Config struct {
	Limits Limits `yaml:"limits"`

	// DebugChecks verifies the document tree after every change. It is
	// slow and meant for tests.
	DebugChecks bool `yaml:"debug_checks"`

	// OutputChunkSize is the number of bytes rendered ahead of a reader.
	OutputChunkSize int `yaml:"output_chunk_size"`
}

// DefaultConfig returns limits suited to documents of a few megabytes.
func DefaultConfig() Config {
	d := doctree.DefaultConfig()
	return Config{
		Limits: Limits{
			MaxNesting:      builder.DefaultMaxNesting,
			NodePlanes:      d.MaxNodePlanes,
			NodePlaneSize:   d.NodePlaneSize,
			TextSegments:    d.Text.MaxSegments,
			TextSegmentSize: d.Text.SegmentSize,
			ValuePlanes:     d.Values.MaxPlanes,
			ValuePlaneSize:  d.Values.PlaneSize,
			UndoEntries:     16384,
		},
		OutputChunkSize: outbuf.DefaultLimit,
	}
}

// LoadConfig reads a YAML document from r over DefaultConfig and validates
// the result. Keys that are not part of Config are rejected.
//
//	limits:
//	  max_nesting: 64
//	output_chunk_size: 8192
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first limit that is out of range.
func (c Config) Validate() error {
	l := c.Limits
	for _, f := range []struct {
		name string
		val  int
	}{
		{"max_nesting", l.MaxNesting},
		{"node_planes", l.NodePlanes},
		{"text_segments", l.TextSegments},
		{"value_planes", l.ValuePlanes},
		{"undo_entries", l.UndoEntries},
		{"output_chunk_size", c.OutputChunkSize},
	} {
		if f.val <= 0 {
			return errors.Errorf("%s must be positive, got %d", f.name, f.val)
		}
	}
	for _, f := range []struct {
		name string
		val  int
	}{
		{"node_plane_size", l.NodePlaneSize},
		{"value_plane_size", l.ValuePlaneSize},
	} {
		if f.val < 16 || f.val&(f.val-1) != 0 {
			return errors.Errorf("%s must be a power of two of at least 16, got %d", f.name, f.val)
		}
	}
	if l.TextSegmentSize < 16 {
		return errors.Errorf("text_segment_size must be at least 16, got %d", l.TextSegmentSize)
	}
	return nil
}

func (c Config) documentConfig() doctree.Config {
	l := c.Limits
	return doctree.Config{
		NodePlaneSize: l.NodePlaneSize,
		MaxNodePlanes: l.NodePlanes,
		Text:          textstore.Config{SegmentSize: l.TextSegmentSize, MaxSegments: l.TextSegments},
		Values:        props.StoreConfig{PlaneSize: l.ValuePlaneSize, MaxPlanes: l.ValuePlanes},
		DebugChecks:   c.DebugChecks,
	}
}
