// Package schema persists diagrams inside a versioned envelope and reads
// them back from any supported generation.
//
// Reading classifies the input as an envelope, a legacy bare diagram
// (version 0), or something that is not diagram data at all. Envelopes
// outside the supported version window fail with a *VersionError; data that
// is not a diagram yields a nil diagram and no error so callers can probe
// input speculatively.
package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// Version window.
const (
	CurrentVersion      = 4
	SupportedWindow     = 2
	MinSupportedVersion = CurrentVersion - SupportedWindow

	// LegacyVersion is assigned to bare diagrams stored without an envelope.
	LegacyVersion = 0
)

// Envelope is the persisted form of a diagram.
type Envelope struct {
	SchemaVersion int               `json:"schemaVersion"`
	Diagram       diagram.ERDiagram `json:"diagram"`
}

// Option configures Encode and Decode.
type Option func(*codecConfig)

type codecConfig struct {
	gen    diagram.Generator
	logger *slog.Logger
}

// WithGenerator sets the id and clock source used to fill missing fields.
func WithGenerator(g diagram.Generator) Option {
	return func(c *codecConfig) { c.gen = g }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *codecConfig) { c.logger = l }
}

func newCodecConfig(opts []Option) codecConfig {
	cfg := codecConfig{gen: diagram.DefaultGenerator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.gen == nil {
		cfg.gen = diagram.DefaultGenerator{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// Encode normalizes d and wraps it at the current version.
func Encode(d diagram.ERDiagram, opts ...Option) Envelope {
	cfg := newCodecConfig(opts)
	return Envelope{
		SchemaVersion: CurrentVersion,
		Diagram:       NormalizeDiagram(d, cfg.gen),
	}
}

// EncodeJSON encodes d and marshals the envelope.
func EncodeJSON(d diagram.ERDiagram, opts ...Option) ([]byte, error) {
	data, err := json.Marshal(Encode(d, opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

// Decode reads a diagram from value, migrating it to the current version.
//
// value may be nil, JSON text (string, []byte, json.RawMessage), generic
// JSON values, an Envelope, or a diagram.ERDiagram (or pointers to either).
// It returns (nil, nil) when value is not diagram data, and a *VersionError
// when an envelope's version is outside the supported window.
func Decode(value any, opts ...Option) (*diagram.ERDiagram, error) {
	cfg := newCodecConfig(opts)

	tree, ok := toTree(value)
	if !ok || tree == nil {
		return nil, nil
	}
	obj, ok := tree.(object)
	if !ok {
		return nil, nil
	}

	if version, payload, isEnvelope := envelopeOf(obj); isEnvelope {
		if version != math.Trunc(version) {
			return nil, nil
		}
		version = math.Max(math.Min(version, math.MaxInt32), math.MinInt32)
		return decodeEnvelope(int(version), payload, cfg)
	}

	if looksLikeDiagram(obj) {
		cfg.logger.Debug("decoding legacy diagram", slog.Int("version", LegacyVersion))
		d := migrate(LegacyVersion, obj, cfg)
		return &d, nil
	}
	return nil, nil
}

// envelopeOf reports whether obj has a numeric schemaVersion and a diagram
// field.
func envelopeOf(obj object) (version float64, payload any, ok bool) {
	v, hasVersion := asNumber(obj["schemaVersion"])
	payload, hasDiagram := obj["diagram"]
	return v, payload, hasVersion && hasDiagram
}

func decodeEnvelope(version int, payload any, cfg codecConfig) (*diagram.ERDiagram, error) {
	switch {
	case version > CurrentVersion:
		if !looksLikeDiagram(payload) {
			return nil, &VersionError{Version: version, Current: CurrentVersion, Kind: TooNew}
		}
		cfg.logger.Debug("reading newer diagram as current",
			slog.Int("version", version), slog.Int("current", CurrentVersion))
		d := Normalize(payload, cfg.gen)
		return &d, nil
	case version < MinSupportedVersion:
		return nil, &VersionError{Version: version, Current: CurrentVersion, Kind: TooOld}
	case !looksLikeDiagram(payload):
		return nil, nil
	}
	d := migrate(version, payload, cfg)
	return &d, nil
}

// DecodeJSON decodes JSON text. It is Decode for callers holding bytes.
func DecodeJSON(data []byte, opts ...Option) (*diagram.ERDiagram, error) {
	return Decode(data, opts...)
}

// Kind is how Decode classifies its input.
type Kind int

// Input kinds.
const (
	KindInvalid  Kind = iota // neither an envelope nor a bare diagram
	KindEnvelope             // {"schemaVersion": n, "diagram": ...}
	KindLegacy               // a bare diagram, treated as version 0
)

func (k Kind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindLegacy:
		return "legacy"
	default:
		return "invalid"
	}
}

// Detect reports how Decode would classify value and the version it carries.
// It does not apply the version gate.
func Detect(value any) (Kind, int) {
	tree, ok := toTree(value)
	if !ok {
		return KindInvalid, 0
	}
	obj, ok := tree.(object)
	if !ok {
		return KindInvalid, 0
	}
	if version, _, isEnvelope := envelopeOf(obj); isEnvelope {
		if version != math.Trunc(version) {
			return KindInvalid, 0
		}
		return KindEnvelope, int(math.Max(math.Min(version, math.MaxInt32), math.MinInt32))
	}
	if looksLikeDiagram(obj) {
		return KindLegacy, LegacyVersion
	}
	return KindInvalid, 0
}
