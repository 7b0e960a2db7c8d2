// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// ContentRule checks the document payload. Three shapes are supported:
// Nil requires the payload to be absent; Schema validates the decoded
// JSON content against a schema fixed when the rule bundle was built;
// Templated fetches the document's template and validates against the
// JSON Schema the template carries as its own content.
type ContentRule struct {
	Nil       bool
	Schema    *jsonschema.Schema
	Templated bool
}

func (r ContentRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	_, hasPayload := doc.Payload()
	if r.Nil {
		if hasPayload {
			rpt.InvalidValue(
				"payload",
				"<bytes>",
				"must be absent for this document type",
				"content rule",
			)
			return false, nil
		}
		return true, nil
	}
	if !hasPayload {
		rpt.MissingField("payload", "content rule")
		return false, nil
	}
	content, err := doc.DecodedContent()
	if err != nil {
		rpt.InvalidValue(
			"payload",
			"<bytes>",
			"must decode under the declared content encoding: "+err.Error(),
			"content rule",
		)
		return false, nil
	}
	if ct, ok := doc.ContentType(); ok && !ct.IsJSON() {
		// Non-JSON payloads carry no schema to validate against
		return true, nil
	}
	var decoded any
	if err := json.Unmarshal(content, &decoded); err != nil {
		rpt.InvalidValue(
			"payload",
			"<bytes>",
			"must be well-formed JSON: "+err.Error(),
			"content rule",
		)
		return false, nil
	}
	schema := r.Schema
	if r.Templated {
		schema, err = r.templateSchema(ctx, doc, provider)
		if err != nil {
			return false, err
		}
		if schema == nil {
			// templateSchema already reported why
			return false, nil
		}
	}
	if schema == nil {
		return true, nil
	}
	if err := schema.Validate(decoded); err != nil {
		rpt.FunctionalValidation(
			"content does not match template schema: "+err.Error(),
			"content rule",
		)
		return false, nil
	}
	return true, nil
}

// templateSchema resolves the document's template reference and
// compiles the template's content as a JSON Schema. A nil schema with a
// nil error means the failure was recorded in the problem report.
func (r ContentRule) templateSchema(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (*jsonschema.Schema, error) {
	rpt := doc.Report()
	templates := doc.Template()
	if len(templates) == 0 {
		rpt.MissingField("template", "content rule")
		return nil, nil
	}
	ref := templates[0]
	template, err := provider.GetDoc(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", ref, err)
	}
	if template == nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("template %s not found", ref),
			"content rule",
		)
		return nil, nil
	}
	if template.Report().IsProblematic() {
		rpt.FunctionalValidation(
			fmt.Sprintf("template %s is problematic", ref),
			"content rule",
		)
		return nil, nil
	}
	schemaBytes, err := template.DecodedContent()
	if err != nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("template %s content does not decode: %s", ref, err),
			"content rule",
		)
		return nil, nil
	}
	schema, err := compileSchema(schemaBytes)
	if err != nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("template %s does not carry a valid JSON schema: %s", ref, err),
			"content rule",
		)
		return nil, nil
	}
	return schema, nil
}

// compileSchema compiles raw JSON Schema bytes under draft 7.
func compileSchema(data []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}
