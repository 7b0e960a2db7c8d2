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

// ContentEncodingRule checks the declared content encoding against the
// allowed set and proves the payload actually decompresses under it. An
// absent field passes only when Optional is set.
type ContentEncodingRule struct {
	Allowed  []document.ContentEncoding
	Optional bool
}

func (r ContentEncodingRule) Check(
	_ context.Context,
	doc *document.Document,
	_ providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	enc, ok := doc.ContentEncoding()
	if !ok {
		if r.Optional {
			return true, nil
		}
		rpt.MissingField("content-encoding", "content encoding rule")
		return false, nil
	}
	if !slices.Contains(r.Allowed, enc) {
		rpt.InvalidValue(
			"content-encoding",
			enc.String(),
			"one of: "+joinContentEncodings(r.Allowed),
			"content encoding rule",
		)
		return false, nil
	}
	if _, hasPayload := doc.Payload(); hasPayload {
		if _, err := doc.DecodedContent(); err != nil {
			rpt.InvalidValue(
				"payload",
				"<bytes>",
				"must decode under the declared content encoding: "+err.Error(),
				"content encoding rule",
			)
			return false, nil
		}
	}
	return true, nil
}

func joinContentEncodings(encodings []document.ContentEncoding) string {
	names := make([]string, 0, len(encodings))
	for _, enc := range encodings {
		names = append(names, enc.String())
	}
	return strings.Join(names, ", ")
}
