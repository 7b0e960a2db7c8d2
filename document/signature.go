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

package document

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
)

// Ed25519 signatures are always 64 bytes
const signatureSize = 64

const signaturesContext = "signatures"

// Signature is one signer slot of the COSE-Sign layer. The per-signer
// protected header bytes are preserved exactly as decoded so the
// to-be-signed input stays stable.
type Signature struct {
	KID   catalystid.CatalystID
	Bytes []byte
	// raw per-signer protected header bstr content
	protected []byte
}

// Protected returns the raw per-signer protected header map bytes
func (s Signature) Protected() []byte {
	return s.protected
}

// Signatures is the ordered signer list of a document
type Signatures []Signature

// Kids returns the key identifiers of all signers in order
func (s Signatures) Kids() []catalystid.CatalystID {
	ret := make([]catalystid.CatalystID, 0, len(s))
	for _, sig := range s {
		ret = append(ret, sig.KID)
	}
	return ret
}

// newSignature builds a signer slot for the given key identifier with a
// deterministic protected header {4 => kid}
func newSignature(kid catalystid.CatalystID, sigBytes []byte) Signature {
	kidBytes := []byte(kid.String())
	rawKey := cbor.AppendUint(nil, cbor.CborTypeUint, coseLabelKid)
	protected := cbor.EncodeMapFromPairs([]cbor.MapPair{
		{
			RawKey:   rawKey,
			RawValue: cbor.EncodeByteString(kidBytes),
		},
	})
	return Signature{
		KID:       kid,
		Bytes:     sigBytes,
		protected: protected,
	}
}

// decodeSignature parses one [protected, unprotected, signature] signer
// slot, reporting problems without aborting
func decodeSignature(
	data cbor.RawMessage,
	index int,
	dctx *DecodeContext,
) (Signature, bool) {
	var ret Signature
	context := fmt.Sprintf("%s[%d]", signaturesContext, index)
	items, err := cbor.ArrayItems(data)
	if err != nil || len(items) != 3 {
		dctx.Report.InvalidEncoding(
			"signature",
			hex.EncodeToString(data),
			"3-element COSE signature array",
			context,
		)
		return ret, false
	}
	var protected []byte
	if err := cbor.DecodeFull(items[0], &protected); err != nil {
		dctx.Report.InvalidEncoding(
			"signature protected header",
			hex.EncodeToString(items[0]),
			"byte string",
			context,
		)
		return ret, false
	}
	ret.protected = protected
	kid, ok := decodeSignatureKid(protected, context, dctx)
	if !ok {
		return ret, false
	}
	ret.KID = kid
	// Per-signer unprotected header must be an empty map
	unprotected, err := cbor.MapPairs(items[1])
	if err != nil {
		dctx.Report.InvalidEncoding(
			"signature unprotected header",
			hex.EncodeToString(items[1]),
			"map",
			context,
		)
	} else if len(unprotected) != 0 {
		dctx.Report.InvalidValue(
			"signature unprotected header",
			hex.EncodeToString(items[1]),
			"must be empty",
			context,
		)
	}
	var sigBytes []byte
	if err := cbor.DecodeFull(items[2], &sigBytes); err != nil {
		dctx.Report.InvalidEncoding(
			"cose signature",
			hex.EncodeToString(items[2]),
			"byte string",
			context,
		)
		return ret, false
	}
	if len(sigBytes) != signatureSize {
		dctx.Report.InvalidValue(
			"cose signature",
			fmt.Sprintf("%d", len(sigBytes)),
			fmt.Sprintf("must be %d", signatureSize),
			context,
		)
	}
	ret.Bytes = sigBytes
	return ret, true
}

// decodeSignatureKid parses the per-signer protected header, which must
// hold exactly one entry {4 => kid bytes}
func decodeSignatureKid(
	protected []byte,
	context string,
	dctx *DecodeContext,
) (catalystid.CatalystID, bool) {
	var ret catalystid.CatalystID
	pairs, err := cbor.MapPairs(protected)
	if err != nil {
		dctx.Report.InvalidEncoding(
			"signature protected header",
			hex.EncodeToString(protected),
			"deterministic map",
			context,
		)
		return ret, false
	}
	if len(pairs) != 1 {
		dctx.Report.InvalidValue(
			"signature protected header",
			fmt.Sprintf("%d entries", len(pairs)),
			"must hold exactly the kid entry",
			context,
		)
		return ret, false
	}
	label, err := cbor.CanonicalUint(pairs[0].RawKey)
	if err != nil || label != coseLabelKid {
		dctx.Report.InvalidValue(
			"signature protected header",
			hex.EncodeToString(pairs[0].RawKey),
			fmt.Sprintf("key must be %d (kid)", coseLabelKid),
			context,
		)
		return ret, false
	}
	var kidBytes []byte
	if err := cbor.DecodeFull(pairs[0].RawValue, &kidBytes); err != nil {
		dctx.Report.InvalidEncoding(
			"kid",
			hex.EncodeToString(pairs[0].RawValue),
			"byte string",
			context,
		)
		return ret, false
	}
	kid, err := catalystid.Parse(string(kidBytes))
	if err != nil {
		dctx.Report.InvalidValue(
			"kid",
			string(kidBytes),
			err.Error(),
			context,
		)
		return ret, false
	}
	return kid, true
}
