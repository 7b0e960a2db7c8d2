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
)

// VerRule checks version monotonicity against the provider's view of
// the document's history:
//
//   - ver must not precede id
//   - the first published version must have ver equal to id
//   - the type must match the first known version's type
//   - ver must not regress below the latest known version; republishing
//     the same ver is allowed
type VerRule struct{}

func (VerRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	id := doc.ID()
	ver := doc.Ver()
	if id.IsZero() || ver.IsZero() {
		rpt.MissingField("ver", "ver rule")
		return false, nil
	}
	if ver.Before(id) {
		rpt.InvalidValue(
			"ver",
			ver.String(),
			"must not precede id",
			"ver rule",
		)
		return false, nil
	}
	first, err := provider.GetFirstDoc(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get first version of %s: %w", id, err)
	}
	if first == nil {
		// No history: this document must be the first version
		if !ver.Equal(id) {
			rpt.InvalidValue(
				"ver",
				ver.String(),
				"first version must have ver equal to id",
				"ver rule",
			)
			return false, nil
		}
		return true, nil
	}
	if first.Report().IsProblematic() {
		rpt.FunctionalValidation(
			fmt.Sprintf("first version %s of %s is problematic", first.Ver(), id),
			"ver rule",
		)
		return false, nil
	}
	if !first.Type().Equal(doc.Type()) {
		rpt.InvalidValue(
			"type",
			doc.Type().String(),
			fmt.Sprintf("must match first version type %s", first.Type()),
			"ver rule",
		)
		return false, nil
	}
	last, err := provider.GetLastDoc(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get last version of %s: %w", id, err)
	}
	if last != nil && ver.Before(last.Ver()) {
		rpt.InvalidValue(
			"ver",
			ver.String(),
			fmt.Sprintf("must not regress below latest known version %s", last.Ver()),
			"ver rule",
		)
		return false, nil
	}
	return true, nil
}
