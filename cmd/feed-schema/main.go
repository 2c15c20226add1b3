package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"campfire/internal/core"
	"campfire/internal/feed"

	"github.com/invopop/jsonschema"
)

// protocol groups every frame and payload so one document covers the wire
// format.
type protocol struct {
	Envelope  feed.Envelope  `json:"envelope"`
	Hello     feed.Hello     `json:"hello"`
	Say       feed.Say       `json:"say"`
	Welcome   feed.Welcome   `json:"welcome"`
	RoomState feed.RoomState `json:"state"`
	Burned    feed.Burned    `json:"burned"`
	Error     feed.Error     `json:"error"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema (stdout when empty)")
	flag.Parse()

	data, err := json.MarshalIndent(buildSchema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal schema: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := writeSchema(outPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	modeType := reflect.TypeOf(core.Mode(0))
	rawType := reflect.TypeOf(json.RawMessage(nil))
	reflector := jsonschema.Reflector{
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case modeType:
				var names []any
				for m := core.ModeLanding; m <= core.ModePrivate; m++ {
					names = append(names, m.String())
				}
				return &jsonschema.Schema{Type: "string", Enum: names}
			case rawType:
				return &jsonschema.Schema{Description: "payload for the envelope type"}
			}
			return nil
		},
	}
	schema := reflector.Reflect(new(protocol))
	schema.Title = "Campfire feed protocol"
	schema.Description = fmt.Sprintf("Frames exchanged with the room hub. Clients send %s, %s, %s and %s; the hub answers with %s, %s, %s and %s.",
		feed.MsgHello, feed.MsgSay, feed.MsgBurn, feed.MsgPing, feed.MsgWelcome, feed.MsgState, feed.MsgBurned, feed.MsgError)
	return schema
}

func writeSchema(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
