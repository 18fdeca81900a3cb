package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Keys the provider has been seen to return the translation under, in preference order.
var translationKeys = []string{"translated_text", "translation", "output", "text"}

var errNoTranslation = errors.New("response carries no translated text")

// buildResponseSchema accepts any object holding a non-empty string under one of
// translationKeys.
func buildResponseSchema() map[string]any {
	branches := make([]any, 0, len(translationKeys))
	for _, k := range translationKeys {
		branches = append(branches, map[string]any{
			"required": []string{k},
			"properties": map[string]any{
				k: map[string]any{"type": "string", "minLength": 1},
			},
		})
	}
	return map[string]any{
		"type":  "object",
		"anyOf": branches,
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func responseSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(buildResponseSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("translate_response.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("translate_response.json")
	})
	return schema, schemaErr
}

// decodeTranslation validates a provider body and returns the translated text.
func decodeTranslation(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: decode: %v", errNoTranslation, err)
	}
	sch, err := responseSchema()
	if err != nil {
		return "", err
	}
	if err := sch.Validate(v); err != nil {
		return "", fmt.Errorf("%w: %v", errNoTranslation, err)
	}
	obj, _ := v.(map[string]any)
	for _, k := range translationKeys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", errNoTranslation
}
