package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"

	"novastrike/engine/logging"
	lifecyclelog "novastrike/engine/logging/lifecycle"
	targetinglog "novastrike/engine/logging/targeting"
)

// The diagnostic event contract: every payload an external observability
// layer can receive over the hub, keyed by event type.
var payloadTypes = map[logging.EventType]any{
	targetinglog.EventTargetSelected:       targetinglog.TargetSelectedPayload{},
	targetinglog.EventTargetRejected:       targetinglog.TargetRejectedPayload{},
	targetinglog.EventFieldDegraded:        targetinglog.FieldDegradedPayload{},
	targetinglog.EventGridStats:            targetinglog.GridStatsPayload{},
	targetinglog.EventRetargetSwitched:     targetinglog.RetargetSwitchedPayload{},
	targetinglog.EventRetargetRejected:     targetinglog.RetargetRejectedPayload{},
	targetinglog.EventClaimConflict:        targetinglog.ClaimConflictPayload{},
	lifecyclelog.EventNovaLaunched:         lifecyclelog.NovaLaunchedPayload{},
	lifecyclelog.EventNovaExpired:          lifecyclelog.NovaExpiredPayload{},
	lifecyclelog.EventLauncherRepositioned: lifecyclelog.RepositionPayload{},
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schema: missing -out path")
	}

	document, err := buildDocument()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		log.Fatalf("schema: marshal: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schema: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schema: write schema: %v", err)
	}
}

type document struct {
	Envelope *jsonschema.Schema            `json:"envelope"`
	Payloads map[string]*jsonschema.Schema `json:"payloads"`
}

func buildDocument() (*document, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	envelope := reflector.ReflectFromType(reflect.TypeOf(logging.Event{}))
	if envelope == nil {
		return nil, fmt.Errorf("failed to reflect event envelope")
	}
	envelope.Version = ""
	envelope.Title = "Diagnostic Event"
	envelope.Description = "Envelope carried by every event on the diagnostics stream."

	payloads := make(map[string]*jsonschema.Schema, len(payloadTypes))
	types := make([]string, 0, len(payloadTypes))
	for eventType := range payloadTypes {
		types = append(types, string(eventType))
	}
	sort.Strings(types)
	for _, eventType := range types {
		schema := reflector.ReflectFromType(reflect.TypeOf(payloadTypes[logging.EventType(eventType)]))
		if schema == nil {
			return nil, fmt.Errorf("failed to reflect payload for %s", eventType)
		}
		schema.Version = ""
		payloads[eventType] = schema
	}

	return &document{Envelope: envelope, Payloads: payloads}, nil
}
