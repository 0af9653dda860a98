// Package manifesthttp fetches team manifest documents over HTTP (or
// from local files via file:// URLs) and validates them against the
// manifest JSON schema before any sync logic sees them.
package manifesthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/secondary"
)

// maxManifestBytes caps how much of a manifest response is read.
const maxManifestBytes = 4 << 20

// manifestSchema is the JSON Schema every manifest document must
// satisfy before a sync run will look at it.
const manifestSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["version", "services"],
	"properties": {
		"version": {"type": "integer", "minimum": 1},
		"services": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["key", "name"],
				"properties": {
					"key": {
						"type": "string",
						"pattern": "^[a-z0-9][a-z0-9_-]*$",
						"maxLength": 128
					},
					"name": {"type": "string", "minLength": 1, "maxLength": 256},
					"endpoint": {"type": "string"},
					"health_endpoint": {"type": "string"},
					"poll_interval_seconds": {"type": "integer", "minimum": 5},
					"dependencies": {
						"type": "array",
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`

// entryFields are the manifest entry keys the engine understands.
// Anything else in an entry becomes a validation warning.
var entryFields = map[string]bool{
	"key":                   true,
	"name":                  true,
	"endpoint":              true,
	"health_endpoint":       true,
	"poll_interval_seconds": true,
	"dependencies":          true,
}

// Fetcher implements secondary.ManifestFetcher.
type Fetcher struct {
	client  *http.Client
	schema  *jsonschema.Schema
	printer *message.Printer
}

// NewFetcher creates a fetcher with the given HTTP timeout. The
// embedded schema is compiled once; a compile failure is a programmer
// error and panics at startup.
func NewFetcher(timeout time.Duration) *Fetcher {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(manifestSchema))
	if err != nil {
		panic(fmt.Sprintf("manifest schema is not valid JSON: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", doc); err != nil {
		panic(fmt.Sprintf("failed to add manifest schema: %v", err))
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile manifest schema: %v", err))
	}

	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		schema:  schema,
		printer: message.NewPrinter(language.English),
	}
}

// Fetch retrieves and validates the manifest at url. Network and HTTP
// failures return an error; a document that fails schema validation
// returns a nil manifest and a result with Valid=false.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Manifest, *secondary.ValidationResult, error) {
	body, err := f.read(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return f.validate(body)
}

func (f *Fetcher) read(ctx context.Context, url string) ([]byte, error) {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("manifest fetch failed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest body: %w", err)
	}
	return data, nil
}

func (f *Fetcher) validate(body []byte) (*models.Manifest, *secondary.ValidationResult, error) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, &secondary.ValidationResult{
			Valid:  false,
			Errors: []secondary.ValidationIssue{{Path: "/", Message: fmt.Sprintf("not valid JSON: %v", err)}},
		}, nil
	}

	if err := f.schema.Validate(instance); err != nil {
		result := &secondary.ValidationResult{Valid: false}
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			result.Errors = f.flatten(ve)
		} else {
			result.Errors = []secondary.ValidationIssue{{Path: "/", Message: err.Error()}}
		}
		return nil, result, nil
	}

	var manifest models.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, &secondary.ValidationResult{
			Valid:  false,
			Errors: []secondary.ValidationIssue{{Path: "/", Message: fmt.Sprintf("failed to decode manifest: %v", err)}},
		}, nil
	}

	result := &secondary.ValidationResult{
		Valid:        true,
		ServiceCount: len(manifest.Services),
		Warnings:     unknownFieldWarnings(instance),
	}
	return &manifest, result, nil
}

// flatten collects the leaf causes of a validation error as
// path/message issues.
func (f *Fetcher) flatten(ve *jsonschema.ValidationError) []secondary.ValidationIssue {
	if len(ve.Causes) == 0 {
		return []secondary.ValidationIssue{{
			Path:    "/" + strings.Join(ve.InstanceLocation, "/"),
			Message: ve.ErrorKind.LocalizedString(f.printer),
		}}
	}
	var issues []secondary.ValidationIssue
	for _, cause := range ve.Causes {
		issues = append(issues, f.flatten(cause)...)
	}
	return issues
}

// unknownFieldWarnings reports entry keys the engine will ignore.
func unknownFieldWarnings(instance any) []secondary.ValidationIssue {
	doc, ok := instance.(map[string]any)
	if !ok {
		return nil
	}
	services, ok := doc["services"].([]any)
	if !ok {
		return nil
	}

	var warnings []secondary.ValidationIssue
	for i, raw := range services {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for key := range entry {
			if !entryFields[key] {
				warnings = append(warnings, secondary.ValidationIssue{
					Path:    fmt.Sprintf("/services/%d/%s", i, key),
					Message: fmt.Sprintf("unknown field %q ignored", key),
				})
			}
		}
	}
	return warnings
}

// Ensure Fetcher implements the interface
var _ secondary.ManifestFetcher = (*Fetcher)(nil)
