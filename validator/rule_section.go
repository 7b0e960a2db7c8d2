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

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// SectionRule checks presence of the section pointer. The pointer
// syntax itself is checked at decode time; this rule only enforces
// whether the document type admits the field at all.
type SectionRule struct {
	Optional bool
	Excluded bool
}

func (r SectionRule) Check(
	_ context.Context,
	doc *document.Document,
	_ providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	section, ok := doc.Section()
	if r.Excluded {
		if ok {
			rpt.InvalidValue(
				"section",
				section,
				"must not be present for this document type",
				"section rule",
			)
			return false, nil
		}
		return true, nil
	}
	if !ok && !r.Optional {
		rpt.MissingField("section", "section rule")
		return false, nil
	}
	return true, nil
}
