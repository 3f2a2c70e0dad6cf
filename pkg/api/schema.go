package api

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per embedded schemas/*.json file.
const (
	SchemaLocaleList    = "locale-list"
	SchemaUserList      = "user-list"
	SchemaLogList       = "log-list"
	SchemaQueryList     = "query-list"
	SchemaTripScoreList = "trip-score-list"
	SchemaEnvelope      = "mutation-envelope"
)

// ErrShape marks a response body that failed schema validation or decoding.
// Pages classify it as a decode failure, distinct from transport errors.
var ErrShape = errors.New("response shape mismatch")

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	paths, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		panic(fmt.Sprintf("glob embedded schemas: %v", err))
	}

	// Register every schema as a resource first so cross-references resolve
	for _, path := range paths {
		file, err := schemaFS.Open(path)
		if err != nil {
			panic(fmt.Sprintf("open embedded schema %s: %v", path, err))
		}
		if err := compiler.AddResource(path, file); err != nil {
			file.Close()
			panic(fmt.Sprintf("add schema resource %s: %v", path, err))
		}
		file.Close()
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", path, err))
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "schemas/"), ".json")
		compiledSchemas[name] = schema
	}
}

// Validate checks a raw response body against the named embedded schema.
// Validation happens before decoding so mis-shaped payloads are rejected
// explicitly instead of silently rendering an empty page.
func Validate(schemaName string, body []byte) error {
	schema, ok := compiledSchemas[schemaName]
	if !ok {
		return fmt.Errorf("no schema registered for %q", schemaName)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: body is not valid JSON: %v", ErrShape, err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrShape, schemaName, err)
	}

	return nil
}
