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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// docTypesSpec is the top-level shape of a document-types specification
type docTypesSpec struct {
	Docs map[string]docTypeSpec `json:"docs"`
}

type docTypeSpec struct {
	Type     string                  `json:"type"`
	Draft    bool                    `json:"draft"`
	Headers  docHeadersSpec          `json:"headers"`
	Metadata map[string]docFieldSpec `json:"metadata"`
	Payload  docPayloadSpec          `json:"payload"`
	Signers  docSignersSpec          `json:"signers"`
}

type docHeadersSpec struct {
	ContentType     *docHeaderSpec `json:"content type"`
	ContentEncoding *docHeaderSpec `json:"content-encoding"`
}

type docHeaderSpec struct {
	Value    []string `json:"value"`
	Optional bool     `json:"optional"`
}

type docFieldSpec struct {
	// Required is one of "yes", "optional" or "excluded"
	Required string   `json:"required"`
	Type     []string `json:"type"`
	Multiple bool     `json:"multiple"`
}

type docPayloadSpec struct {
	Nil bool `json:"nil"`
	// Schema is either the literal string "template" or an inline JSON
	// Schema object
	Schema json.RawMessage `json:"schema"`
}

type docSignersSpec struct {
	Roles []uint8 `json:"roles"`
	// Update is one of "author", "collaborators" or "ref"
	Update string `json:"update"`
}

const (
	requiredYes      = "yes"
	requiredOptional = "optional"
	requiredExcluded = "excluded"
)

// refFieldSpecs maps spec metadata keys to the reference fields the
// loader knows how to constrain
var refFieldSpecs = map[string]document.SupportedField{
	"ref":        document.FieldRef,
	"template":   document.FieldTemplate,
	"reply":      document.FieldReply,
	"parameters": document.FieldParameters,
}

// LoadSpec parses a document-types specification and synthesises the
// rule bundle table it describes. Internal inconsistencies in the spec
// are fatal: a field both excluded and typed, a multi-reference flag on
// a single-reference field, a type name no entry defines, or two
// entries sharing a type uuid.
func LoadSpec(data []byte) (map[uuid.V4]*Rules, error) {
	var spec docTypesSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse document types spec: %w", err)
	}
	// First pass: resolve type names to uuids
	typesByName := make(map[string]uuid.V4, len(spec.Docs))
	table := make(map[uuid.V4]*Rules, len(spec.Docs))
	for name, doc := range spec.Docs {
		docType, err := uuid.ParseV4(doc.Type)
		if err != nil {
			return nil, fmt.Errorf("doc type %q: %w", name, err)
		}
		if _, exists := table[docType]; exists {
			return nil, fmt.Errorf("doc type %q: uuid %s already in use", name, docType)
		}
		typesByName[name] = docType
		table[docType] = nil
	}
	// Second pass: synthesise rules now that every name resolves
	for name, doc := range spec.Docs {
		rules, err := buildRules(name, doc, typesByName)
		if err != nil {
			return nil, fmt.Errorf("doc type %q: %w", name, err)
		}
		table[typesByName[name]] = rules
		slog.Debug(
			"loaded document type",
			"name", name,
			"uuid", typesByName[name].String(),
			"draft", doc.Draft,
		)
	}
	return table, nil
}

func buildRules(
	name string,
	doc docTypeSpec,
	typesByName map[string]uuid.V4,
) (*Rules, error) {
	rules := []Rule{
		IdRule{},
		VerRule{},
		SignatureRule{},
	}
	ctRule, err := buildContentTypeRule(doc.Headers.ContentType)
	if err != nil {
		return nil, err
	}
	rules = append(rules, ctRule)
	ceRule, err := buildContentEncodingRule(doc.Headers.ContentEncoding)
	if err != nil {
		return nil, err
	}
	rules = append(rules, ceRule)
	contentRule, err := buildContentRule(doc.Payload)
	if err != nil {
		return nil, err
	}
	rules = append(rules, contentRule)
	for field, fieldSpec := range doc.Metadata {
		rule, err := buildFieldRule(field, fieldSpec, typesByName)
		if err != nil {
			return nil, fmt.Errorf("metadata field %q: %w", field, err)
		}
		rules = append(rules, rule)
	}
	// Reference fields the spec does not mention are excluded
	for field, supported := range refFieldSpecs {
		if _, mentioned := doc.Metadata[field]; !mentioned {
			rules = append(rules, ExcludedRefRule(supported))
		}
	}
	if _, mentioned := doc.Metadata["section"]; !mentioned {
		rules = append(rules, SectionRule{Excluded: true})
	}
	if _, mentioned := doc.Metadata["collaborators"]; !mentioned {
		rules = append(rules, CollaboratorsRule{Excluded: true})
	}
	if _, mentioned := doc.Metadata["chain"]; !mentioned {
		rules = append(rules, ChainRule{Excluded: true})
	}
	signerRules, err := buildSignerRules(doc.Signers)
	if err != nil {
		return nil, err
	}
	rules = append(rules, signerRules...)
	return NewRules(name, rules...), nil
}

func buildContentTypeRule(spec *docHeaderSpec) (Rule, error) {
	if spec == nil {
		return ContentTypeRule{NotSpecified: true}, nil
	}
	if len(spec.Value) == 0 {
		return nil, fmt.Errorf("content type header allows no values")
	}
	allowed := make([]document.ContentType, 0, len(spec.Value))
	for _, value := range spec.Value {
		ct, err := document.ParseContentType(value)
		if err != nil {
			return nil, err
		}
		allowed = append(allowed, ct)
	}
	return ContentTypeRule{Allowed: allowed}, nil
}

func buildContentEncodingRule(spec *docHeaderSpec) (Rule, error) {
	if spec == nil {
		// No declaration means only raw payloads are admitted
		return ContentEncodingRule{Optional: true}, nil
	}
	if len(spec.Value) == 0 {
		return nil, fmt.Errorf("content-encoding header allows no values")
	}
	allowed := make([]document.ContentEncoding, 0, len(spec.Value))
	for _, value := range spec.Value {
		enc, err := document.ParseContentEncoding(value)
		if err != nil {
			return nil, err
		}
		allowed = append(allowed, enc)
	}
	return ContentEncodingRule{Allowed: allowed, Optional: spec.Optional}, nil
}

func buildContentRule(spec docPayloadSpec) (Rule, error) {
	if spec.Nil {
		if len(spec.Schema) > 0 {
			return nil, fmt.Errorf("payload declared nil but carries a schema")
		}
		return ContentRule{Nil: true}, nil
	}
	if len(spec.Schema) == 0 {
		return ContentRule{}, nil
	}
	var templated string
	if err := json.Unmarshal(spec.Schema, &templated); err == nil {
		if templated != "template" {
			return nil, fmt.Errorf("unsupported payload schema reference %q", templated)
		}
		return ContentRule{Templated: true}, nil
	}
	schema, err := compileSchema(spec.Schema)
	if err != nil {
		return nil, fmt.Errorf("compile inline payload schema: %w", err)
	}
	return ContentRule{Schema: schema}, nil
}

func buildFieldRule(
	field string,
	spec docFieldSpec,
	typesByName map[string]uuid.V4,
) (Rule, error) {
	var optional, excluded bool
	switch spec.Required {
	case requiredYes:
	case requiredOptional:
		optional = true
	case requiredExcluded:
		excluded = true
	default:
		return nil, fmt.Errorf("unknown required mode %q", spec.Required)
	}
	if excluded && len(spec.Type) > 0 {
		return nil, fmt.Errorf("excluded field constrains referenced types")
	}
	if supported, ok := refFieldSpecs[field]; ok {
		if excluded {
			return ExcludedRefRule(supported), nil
		}
		if spec.Multiple && supported != document.FieldRef {
			return nil, fmt.Errorf("field admits a single reference only")
		}
		allowedTypes := make([]uuid.V4, 0, len(spec.Type))
		for _, typeName := range spec.Type {
			docType, ok := typesByName[typeName]
			if !ok {
				return nil, fmt.Errorf("references undefined doc type %q", typeName)
			}
			allowedTypes = append(allowedTypes, docType)
		}
		return refRule{
			field:        supported,
			allowedTypes: allowedTypes,
			multiple:     spec.Multiple,
			optional:     optional,
		}, nil
	}
	switch field {
	case "section":
		return SectionRule{Optional: optional, Excluded: excluded}, nil
	case "collaborators":
		return CollaboratorsRule{Optional: optional, Excluded: excluded}, nil
	case "chain":
		return ChainRule{Optional: optional, Excluded: excluded}, nil
	}
	return nil, fmt.Errorf("unknown metadata field")
}

func buildSignerRules(spec docSignersSpec) ([]Rule, error) {
	if len(spec.Roles) == 0 {
		return nil, fmt.Errorf("signers declare no roles")
	}
	var mode OwnershipMode
	switch spec.Update {
	case "", "author":
		mode = OwnershipAuthorOnly
	case "collaborators":
		mode = OwnershipAllowCollaborators
	case "ref":
		mode = OwnershipRefBased
	default:
		return nil, fmt.Errorf("unknown signers update mode %q", spec.Update)
	}
	return []Rule{
		SignatureKidRule{AllowedRoles: spec.Roles},
		DocumentOwnershipRule{Mode: mode},
	}, nil
}
