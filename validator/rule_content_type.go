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
	"slices"
	"strings"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// ContentTypeRule checks the declared content type against the set the
// document type allows. With NotSpecified set the field must be absent
// instead, which is the shape used for payload-less documents.
type ContentTypeRule struct {
	Allowed      []document.ContentType
	NotSpecified bool
}

func (r ContentTypeRule) Check(
	_ context.Context,
	doc *document.Document,
	_ providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	ct, ok := doc.ContentType()
	if r.NotSpecified {
		if ok {
			rpt.InvalidValue(
				"content-type",
				ct.String(),
				"must not be specified for this document type",
				"content type rule",
			)
			return false, nil
		}
		return true, nil
	}
	if !ok {
		rpt.MissingField("content-type", "content type rule")
		return false, nil
	}
	if !slices.Contains(r.Allowed, ct) {
		rpt.InvalidValue(
			"content-type",
			ct.String(),
			"one of: "+joinContentTypes(r.Allowed),
			"content type rule",
		)
		return false, nil
	}
	return true, nil
}

func joinContentTypes(types []document.ContentType) string {
	names := make([]string, 0, len(types))
	for _, ct := range types {
		names = append(names, ct.String())
	}
	return strings.Join(names, ", ")
}
