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
	"time"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// IdRule checks that the document id carries a plausible timestamp: not
// older than the provider's past threshold and not further in the
// future than its future threshold. A provider that advertises no
// thresholds disables the corresponding bound.
type IdRule struct{}

func (IdRule) Check(
	_ context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	id := doc.ID()
	if id.IsZero() {
		rpt.MissingField("id", "id rule")
		return false, nil
	}
	now := time.Now()
	idTime := id.Time()
	if past, ok := provider.PastThreshold(); ok {
		if idTime.Before(now.Add(-past)) {
			rpt.InvalidValue(
				"id",
				id.String(),
				fmt.Sprintf("timestamp must not be older than %s", past),
				"id rule",
			)
			return false, nil
		}
	}
	if future, ok := provider.FutureThreshold(); ok {
		if idTime.After(now.Add(future)) {
			rpt.InvalidValue(
				"id",
				id.String(),
				fmt.Sprintf("timestamp must not be more than %s ahead", future),
				"id rule",
			)
			return false, nil
		}
	}
	return true, nil
}
