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
	"context"
	"fmt"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// refRule is the shared core of the document-reference rules. Each
// concrete rule names a reference field and constrains what the field
// may point at: the referenced documents must exist, match their
// declared (id, ver), carry one of the allowed types, and sit inside
// the parameters closure of the referring document.
type refRule struct {
	field        document.SupportedField
	allowedTypes []uuid.V4
	multiple     bool
	optional     bool
	excluded     bool
}

// fieldRefs returns the reference list carried by the rule's field.
func (r refRule) fieldRefs(doc *document.Document) document.DocumentRefs {
	switch r.field {
	case document.FieldRef:
		return doc.Ref()
	case document.FieldTemplate:
		return doc.Template()
	case document.FieldReply:
		return doc.Reply()
	case document.FieldParameters:
		return doc.Parameters()
	default:
		return nil
	}
}

func (r refRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	field := r.field.Label()
	refs := r.fieldRefs(doc)
	if r.excluded {
		if len(refs) > 0 {
			rpt.InvalidValue(
				field,
				refs.String(),
				"must not be present for this document type",
				field+" rule",
			)
			return false, nil
		}
		return true, nil
	}
	if len(refs) == 0 {
		if r.optional {
			return true, nil
		}
		rpt.MissingField(field, field+" rule")
		return false, nil
	}
	if !r.multiple && len(refs) > 1 {
		rpt.InvalidValue(
			field,
			refs.String(),
			"must contain a single reference",
			field+" rule",
		)
		return false, nil
	}
	// Linkage applies to references out of the parameters scope, not to
	// the parameters field itself. A document without parameters has an
	// empty closure, so it may only reference unparameterized documents.
	var closure map[string]document.DocumentRef
	if r.field != document.FieldParameters {
		var err error
		closure, err = parametersClosure(ctx, provider, doc.Parameters())
		if err != nil {
			return false, err
		}
	}
	valid := true
	for _, ref := range refs {
		referenced, err := provider.GetDoc(ctx, ref)
		if err != nil {
			return false, fmt.Errorf("get %s %s: %w", field, ref, err)
		}
		if !r.checkReferenced(doc, field, ref, referenced, closure) {
			valid = false
		}
	}
	return valid, nil
}

// checkReferenced validates one resolved reference, reporting every
// violation it finds.
func (r refRule) checkReferenced(
	doc *document.Document,
	field string,
	ref document.DocumentRef,
	referenced *document.Document,
	closure map[string]document.DocumentRef,
) bool {
	rpt := doc.Report()
	if referenced == nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("referenced document %s not found", ref),
			field+" rule",
		)
		return false
	}
	if referenced.Report().IsProblematic() {
		rpt.FunctionalValidation(
			fmt.Sprintf("referenced document %s is problematic", ref),
			field+" rule",
		)
		return false
	}
	if !referenced.ID().Equal(ref.ID) || !referenced.Ver().Equal(ref.Ver) {
		rpt.FunctionalValidation(
			fmt.Sprintf(
				"referenced document %s resolved to mismatched %s/%s",
				ref, referenced.ID(), referenced.Ver(),
			),
			field+" rule",
		)
		return false
	}
	if len(r.allowedTypes) > 0 {
		allowed := false
		for _, t := range r.allowedTypes {
			if referenced.Type().Equal(t) {
				allowed = true
				break
			}
		}
		if !allowed {
			rpt.InvalidValue(
				field,
				ref.String(),
				fmt.Sprintf("referenced document has disallowed type %s", referenced.Type()),
				field+" rule",
			)
			return false
		}
	}
	if closure != nil {
		for _, param := range referenced.Parameters() {
			if _, ok := closure[param.Key()]; !ok {
				rpt.FunctionalValidation(
					fmt.Sprintf(
						"referenced document %s is parameterized by %s, outside this document's parameters scope",
						ref, param,
					),
					field+" rule",
				)
				return false
			}
		}
	}
	return true
}

// RefRule builds the rule for the ref field.
func RefRule(allowedTypes []uuid.V4, multiple bool, optional bool) Rule {
	return refRule{
		field:        document.FieldRef,
		allowedTypes: allowedTypes,
		multiple:     multiple,
		optional:     optional,
	}
}

// TemplateRule builds the rule for the template field. Templates are
// always single references.
func TemplateRule(allowedTypes []uuid.V4, optional bool) Rule {
	return refRule{
		field:        document.FieldTemplate,
		allowedTypes: allowedTypes,
		optional:     optional,
	}
}

// ReplyRule builds the rule for the reply field.
func ReplyRule(allowedTypes []uuid.V4, optional bool) Rule {
	return refRule{
		field:        document.FieldReply,
		allowedTypes: allowedTypes,
		optional:     optional,
	}
}

// ParametersRule builds the rule for the parameters field.
func ParametersRule(allowedTypes []uuid.V4, optional bool) Rule {
	return refRule{
		field:        document.FieldParameters,
		allowedTypes: allowedTypes,
		optional:     optional,
	}
}

// ExcludedRefRule builds a rule that requires the given reference field
// to be absent.
func ExcludedRefRule(field document.SupportedField) Rule {
	return refRule{field: field, excluded: true}
}

// parametersClosure walks the parameters graph breadth-first, resolving
// each parameters reference and folding in the parameters of the
// resolved documents. A visited set keyed by (id, ver) keeps reference
// cycles from looping. Unresolvable references are skipped; the rules
// on the parameters field itself report those.
func parametersClosure(
	ctx context.Context,
	provider providers.Provider,
	roots document.DocumentRefs,
) (map[string]document.DocumentRef, error) {
	closure := make(map[string]document.DocumentRef)
	queue := make([]document.DocumentRef, 0, len(roots))
	queue = append(queue, roots...)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if _, seen := closure[ref.Key()]; seen {
			continue
		}
		closure[ref.Key()] = ref
		referenced, err := provider.GetDoc(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("get parameters %s: %w", ref, err)
		}
		if referenced == nil || referenced.Report().IsProblematic() {
			continue
		}
		queue = append(queue, referenced.Parameters()...)
	}
	return closure, nil
}
