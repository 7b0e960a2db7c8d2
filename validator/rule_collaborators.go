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

// CollaboratorsRule checks the collaborators list: whether the document
// type admits it, and that no entry repeats the same key holder.
type CollaboratorsRule struct {
	Optional bool
	Excluded bool
}

func (r CollaboratorsRule) Check(
	_ context.Context,
	doc *document.Document,
	_ providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	collaborators := doc.Collaborators()
	if r.Excluded {
		if len(collaborators) > 0 {
			rpt.InvalidValue(
				"collaborators",
				fmt.Sprintf("%d entries", len(collaborators)),
				"must not be present for this document type",
				"collaborators rule",
			)
			return false, nil
		}
		return true, nil
	}
	if len(collaborators) == 0 {
		if r.Optional {
			return true, nil
		}
		rpt.MissingField("collaborators", "collaborators rule")
		return false, nil
	}
	valid := true
	for i, collab := range collaborators {
		for _, prior := range collaborators[:i] {
			if collab.SameKeyHolder(prior) {
				rpt.InvalidValue(
					"collaborators",
					collab.Short(),
					"must not repeat the same key holder",
					"collaborators rule",
				)
				valid = false
			}
		}
	}
	return valid, nil
}
