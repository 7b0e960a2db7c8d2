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

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
	"github.com/blinklabs-io/catalyst-signed-doc/report"
)

// OwnershipMode selects who may publish a new version of a document.
type OwnershipMode int

const (
	// OwnershipAuthorOnly admits only the signers of the first version.
	OwnershipAuthorOnly OwnershipMode = iota
	// OwnershipAllowCollaborators additionally admits anyone the first
	// version lists as a collaborator.
	OwnershipAllowCollaborators
	// OwnershipRefBased admits the authors and collaborators of the
	// document the ref field points at, which is the shape comment-like
	// types use.
	OwnershipRefBased
)

// DocumentOwnershipRule checks that everyone who signed the document is
// entitled to publish it, per the type's ownership mode. Identity is
// compared by key holder, so two kids naming the same role-0 key on the
// same network count as the same signer.
type DocumentOwnershipRule struct {
	Mode OwnershipMode
}

func (r DocumentOwnershipRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	signers := doc.Authors()
	if len(signers) == 0 {
		rpt.MissingField("signatures", "ownership rule")
		return false, nil
	}
	allowed, ok, err := r.allowedSigners(ctx, doc, provider)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if allowed == nil {
		// The document is its own first version: its signers define
		// authorship
		return true, nil
	}
	valid := true
	for _, signer := range signers {
		if !containsKeyHolder(allowed, signer) {
			rpt.FunctionalValidation(
				fmt.Sprintf("signer %s is not an allowed author of this document", signer.Short()),
				"ownership rule",
			)
			valid = false
		}
	}
	return valid, nil
}

// allowedSigners resolves the signer set the ownership mode names. A
// nil set with ok=true means authorship is self-defining. ok=false
// means the failure was recorded in the problem report.
func (r DocumentOwnershipRule) allowedSigners(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) ([]catalystid.CatalystID, bool, error) {
	rpt := doc.Report()
	switch r.Mode {
	case OwnershipRefBased:
		refs := doc.Ref()
		if len(refs) == 0 {
			rpt.MissingField("ref", "ownership rule")
			return nil, false, nil
		}
		target, err := provider.GetDoc(ctx, refs[0])
		if err != nil {
			return nil, false, fmt.Errorf("get ref %s: %w", refs[0], err)
		}
		if target == nil {
			rpt.FunctionalValidation(
				fmt.Sprintf("referenced document %s not found", refs[0]),
				"ownership rule",
			)
			return nil, false, nil
		}
		if target.Report().IsProblematic() {
			rpt.FunctionalValidation(
				fmt.Sprintf("referenced document %s is problematic", refs[0]),
				"ownership rule",
			)
			return nil, false, nil
		}
		allowed, ok, err := firstVersionSigners(ctx, target, provider, rpt, true)
		if err != nil || !ok {
			return nil, ok, err
		}
		if allowed == nil {
			// The referenced doc is its own first version
			allowed = append(target.Authors(), target.Collaborators()...)
		}
		return allowed, true, nil
	case OwnershipAllowCollaborators:
		return firstVersionSignersOf(ctx, doc, provider, true)
	default:
		return firstVersionSignersOf(ctx, doc, provider, false)
	}
}

func firstVersionSignersOf(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
	withCollaborators bool,
) ([]catalystid.CatalystID, bool, error) {
	if doc.Ver().Equal(doc.ID()) {
		return nil, true, nil
	}
	return firstVersionSigners(ctx, doc, provider, doc.Report(), withCollaborators)
}

// firstVersionSigners fetches the first version of the given document
// and returns its authors, plus its collaborators when asked. A nil set
// with ok=true means the given document is itself the first version.
func firstVersionSigners(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
	rpt *report.Report,
	withCollaborators bool,
) ([]catalystid.CatalystID, bool, error) {
	if doc.Ver().Equal(doc.ID()) {
		return nil, true, nil
	}
	first, err := provider.GetFirstDoc(ctx, doc.ID())
	if err != nil {
		return nil, false, fmt.Errorf("get first version of %s: %w", doc.ID(), err)
	}
	if first == nil {
		rpt.FunctionalValidation(
			fmt.Sprintf("first version of %s unknown", doc.ID()),
			"ownership rule",
		)
		return nil, false, nil
	}
	if first.Report().IsProblematic() {
		rpt.FunctionalValidation(
			fmt.Sprintf("first version of %s is problematic", doc.ID()),
			"ownership rule",
		)
		return nil, false, nil
	}
	allowed := first.Authors()
	if withCollaborators {
		allowed = append(allowed, first.Collaborators()...)
	}
	return allowed, true, nil
}

func containsKeyHolder(set []catalystid.CatalystID, id catalystid.CatalystID) bool {
	for _, member := range set {
		if member.SameKeyHolder(id) {
			return true
		}
	}
	return false
}
