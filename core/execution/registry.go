package execution

import (
	"encoding/json"
	"fmt"
)

// DecodeOutputFunc turns the schemaless stored payload of one kind back
// into its kind-specific shape.
type DecodeOutputFunc func(output json.RawMessage) (any, error)

// OutputDecoder maps every kind of the closed catalogue to a decoder for
// its stored command output. Completeness is validated at construction:
// a kind without a decoder is a configuration error surfaced at startup,
// never at decode time.
type OutputDecoder struct {
	decoders map[Kind]DecodeOutputFunc
}

// NewOutputDecoder builds a decoder registry for the given catalogue.
// Every kind in the catalogue must have a decoder, and every decoder must
// belong to a catalogue kind; anything else indicates a drifted catalogue
// and fails construction.
func NewOutputDecoder(decoders map[Kind]DecodeOutputFunc, catalogue ...Kind) (*OutputDecoder, error) {
	known := make(map[Kind]struct{}, len(catalogue))
	for _, kind := range catalogue {
		known[kind] = struct{}{}
		if _, exists := decoders[kind]; !exists {
			return nil, fmt.Errorf("kind %q: %w", kind, ErrMissingDecoder)
		}
	}

	for kind := range decoders {
		if _, exists := known[kind]; !exists {
			return nil, fmt.Errorf("decoder for kind %q: %w", kind, ErrUnknownKind)
		}
	}

	registered := make(map[Kind]DecodeOutputFunc, len(decoders))
	for kind, decode := range decoders {
		registered[kind] = decode
	}

	return &OutputDecoder{decoders: registered}, nil
}

// Decode converts stored command output into the kind-specific shape
// using the kind as the discriminant.
func (d *OutputDecoder) Decode(kind Kind, output json.RawMessage) (any, error) {
	decode, exists := d.decoders[kind]
	if !exists {
		return nil, fmt.Errorf("kind %q: %w", kind, ErrUnknownKind)
	}

	decoded, err := decode(output)
	if err != nil {
		return nil, fmt.Errorf("decode output of kind %q: %w", kind, err)
	}

	return decoded, nil
}

// DecodeAs returns a decoder that unmarshals the stored payload into T.
// It covers the common case where a kind's output is a plain struct:
//
//	decoder, err := execution.NewOutputDecoder(map[execution.Kind]execution.DecodeOutputFunc{
//	    KindNodeInfo: execution.DecodeAs[NodeInfo](),
//	    KindPause:    execution.DecodeAs[PauseResult](),
//	}, KindNodeInfo, KindPause)
func DecodeAs[T any]() DecodeOutputFunc {
	return func(output json.RawMessage) (any, error) {
		var decoded T
		if err := json.Unmarshal(output, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	}
}
