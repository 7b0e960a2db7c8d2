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
	"crypto/ed25519"
	"fmt"
	"slices"
	"strconv"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
)

// SignatureKidRule checks that the document carries at least one
// signature and that every signer's kid declares a role the document
// type admits.
type SignatureKidRule struct {
	AllowedRoles []uint8
}

func (r SignatureKidRule) Check(
	_ context.Context,
	doc *document.Document,
	_ providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	sigs := doc.Signatures()
	if len(sigs) == 0 {
		rpt.MissingField("signatures", "signature kid rule")
		return false, nil
	}
	valid := true
	for _, sig := range sigs {
		if !slices.Contains(r.AllowedRoles, sig.KID.Role) {
			rpt.FunctionalValidation(
				fmt.Sprintf(
					"signer %s holds role %d, not allowed for this document type",
					sig.KID.Short(), sig.KID.Role,
				),
				"signature kid rule",
			)
			valid = false
		}
	}
	return valid, nil
}

// SignatureRule verifies every signature cryptographically: it derives
// the to-be-signed bytes for each signature slot, resolves the signer's
// registered Ed25519 key through the provider and verifies the raw
// signature against it.
type SignatureRule struct{}

func (SignatureRule) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	sigs := doc.Signatures()
	if len(sigs) == 0 {
		rpt.MissingField("signatures", "signature rule")
		return false, nil
	}
	valid := true
	for i, sig := range sigs {
		key, err := provider.RegisteredKey(ctx, sig.KID)
		if err != nil {
			return false, fmt.Errorf("registered key for %s: %w", sig.KID.Short(), err)
		}
		if key == nil {
			rpt.FunctionalValidation(
				fmt.Sprintf("Missing public key for %s", sig.KID),
				"signature rule",
			)
			valid = false
			continue
		}
		if len(sig.Bytes) != ed25519.SignatureSize {
			rpt.InvalidValue(
				"cose signature",
				strconv.Itoa(len(sig.Bytes)),
				"must be "+strconv.Itoa(ed25519.SignatureSize)+" bytes",
				"signature rule",
			)
			valid = false
			continue
		}
		tbs, err := doc.ToBeSigned(i)
		if err != nil {
			rpt.FunctionalValidation(
				fmt.Sprintf("cannot derive signed bytes for %s: %s", sig.KID.Short(), err),
				"signature rule",
			)
			valid = false
			continue
		}
		if !ed25519.Verify(key, tbs, sig.Bytes) {
			rpt.FunctionalValidation(
				fmt.Sprintf("signature by %s does not verify", sig.KID.Short()),
				"signature rule",
			)
			valid = false
		}
	}
	return valid, nil
}
