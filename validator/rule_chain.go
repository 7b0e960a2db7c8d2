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
	"strconv"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// ChainRule checks the chain link of a chained document type: height
// zero roots carry no predecessor reference, every other link points at
// the immediately preceding height of the same document id, and no link
// may extend a chain whose predecessor is marked final.
type ChainRule struct {
	Optional bool
	Excluded bool
}

func (r ChainRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	chain, ok := doc.Chain()
	if r.Excluded {
		if ok {
			rpt.InvalidValue(
				"chain",
				strconv.FormatUint(chain.Height, 10),
				"must not be present for this document type",
				"chain rule",
			)
			return false, nil
		}
		return true, nil
	}
	if !ok {
		if r.Optional {
			return true, nil
		}
		rpt.MissingField("chain", "chain rule")
		return false, nil
	}
	if chain.Height == 0 {
		if chain.Document != nil {
			rpt.InvalidValue(
				"chain",
				chain.Document.String(),
				"chain root must not reference a predecessor",
				"chain rule",
			)
			return false, nil
		}
		return true, nil
	}
	if chain.Document == nil {
		rpt.InvalidValue(
			"chain",
			strconv.FormatUint(chain.Height, 10),
			"non-root link must reference its predecessor",
			"chain rule",
		)
		return false, nil
	}
	prior, err := provider.GetDoc(ctx, *chain.Document)
	if err != nil {
		return false, fmt.Errorf("get chain predecessor %s: %w", chain.Document, err)
	}
	if prior == nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("chain predecessor %s not found", chain.Document),
			"chain rule",
		)
		return false, nil
	}
	if prior.Report().IsProblematic() {
		rpt.FunctionalValidation(
			fmt.Sprintf("chain predecessor %s is problematic", chain.Document),
			"chain rule",
		)
		return false, nil
	}
	if !prior.ID().Equal(doc.ID()) {
		rpt.FunctionalValidation(
			fmt.Sprintf(
				"chain predecessor %s belongs to document %s",
				chain.Document, prior.ID(),
			),
			"chain rule",
		)
		return false, nil
	}
	priorChain, ok := prior.Chain()
	if !ok {
		rpt.FunctionalValidation(
			fmt.Sprintf("chain predecessor %s carries no chain link", chain.Document),
			"chain rule",
		)
		return false, nil
	}
	if priorChain.Final {
		rpt.FunctionalValidation(
			fmt.Sprintf("chain predecessor %s is marked final", chain.Document),
			"chain rule",
		)
		return false, nil
	}
	if priorChain.Height+1 != chain.Height {
		rpt.InvalidValue(
			"chain",
			strconv.FormatUint(chain.Height, 10),
			fmt.Sprintf(
				"height must be exactly one above predecessor height %d",
				priorChain.Height,
			),
			"chain rule",
		)
		return false, nil
	}
	// The predecessor must sit inside this document's parameters scope,
	// the same linkage every other reference field carries
	closure, err := parametersClosure(ctx, provider, doc.Parameters())
	if err != nil {
		return false, err
	}
	for _, param := range prior.Parameters() {
		if _, ok := closure[param.Key()]; !ok {
			rpt.FunctionalValidation(
				fmt.Sprintf(
					"chain predecessor %s is parameterized by %s, outside this document's parameters scope",
					chain.Document, param,
				),
				"chain rule",
			)
			return false, nil
		}
	}
	return true, nil
}
