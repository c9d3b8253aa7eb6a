package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"flashmirror/internal/adapter/events"
	"flashmirror/internal/domain/snapshot"

	"github.com/invopop/jsonschema"
)

// envelopeDocument is the remote simulation's response envelope as it
// appears on the wire.
type envelopeDocument struct {
	Status       string             `json:"status" jsonschema:"title=Status,description=success or CONNECTED on acceptance; anything else is a rejection,required"`
	Message      string             `json:"message,omitempty" jsonschema:"description=Human readable outcome"`
	State        *snapshot.Snapshot `json:"state,omitempty" jsonschema:"description=Full world snapshot"`
	InitialState *snapshot.Snapshot `json:"initial_state,omitempty" jsonschema:"description=Snapshot returned by game creation"`
	Data         any                `json:"data,omitempty" jsonschema:"description=Non-snapshot payload; not reconciled"`
}

func main() {
	var outPath, kind string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.StringVar(&kind, "kind", "envelope", "schema to emit: envelope or feed")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema, err := buildSchema(kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema(kind string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	switch kind {
	case "envelope":
		schema := reflector.Reflect(new(envelopeDocument))
		schema.Title = "Flash Point API Envelope"
		schema.Description = "Response envelope returned by every Flash Point simulation route"
		return schema, nil
	case "feed":
		schema := reflector.Reflect(new(events.Message))
		schema.Title = "Flashmirror Observer Feed Message"
		schema.Description = "Frame pushed to websocket observers for every state update or error"
		return schema, nil
	default:
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
