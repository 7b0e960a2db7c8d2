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
	"github.com/blinklabs-io/catalyst-signed-doc/report"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

const envelopeContext = "envelope"

// Document is a decoded or built Catalyst Signed Document. A document is
// immutable once constructed; problems found while decoding live in its
// report rather than aborting construction, so a malformed document is
// still inspectable.
type Document struct {
	cbor.DecodeStoreCbor
	bodyProtected []byte
	metadata      *Metadata
	payload       []byte
	hasPayload    bool
	signatures    Signatures
	rpt           *report.Report
}

// DecodeOption adjusts decode behaviour
type DecodeOption func(*DecodeContext)

// WithRefPolicy sets the legacy document reference policy
func WithRefPolicy(policy RefPolicy) DecodeOption {
	return func(dctx *DecodeContext) {
		dctx.RefPolicy = policy
	}
}

// Decode parses a signed document envelope. Semantic and protocol
// violations are collected in the returned document's report; a non-nil
// error is returned only when the input is not CBOR at all.
func Decode(data []byte, opts ...DecodeOption) (*Document, error) {
	rpt := report.New("catalyst signed document")
	dctx := &DecodeContext{Report: rpt}
	for _, opt := range opts {
		opt(dctx)
	}
	// Input must at least be a single well-formed CBOR item
	var tmpRaw cbor.RawMessage
	if err := cbor.DecodeFull(data, &tmpRaw); err != nil {
		return nil, fmt.Errorf("not a CBOR item: %w", err)
	}
	doc := &Document{rpt: rpt}
	doc.SetCbor(data)
	content := decodeEnvelopeTag(data, dctx)
	items, err := cbor.ArrayItems(content)
	if err != nil {
		rpt.InvalidEncoding(
			"envelope",
			hex.EncodeToString(content),
			"COSE Sign 4-element array",
			envelopeContext,
		)
		doc.metadata = &Metadata{fromWire: true}
		return doc, nil
	}
	if len(items) != 4 {
		rpt.InvalidEncoding(
			"envelope",
			fmt.Sprintf("%d elements", len(items)),
			"COSE Sign 4-element array",
			envelopeContext,
		)
		doc.metadata = &Metadata{fromWire: true}
		return doc, nil
	}
	doc.decodeProtected(items[0], dctx)
	aliasRefs := decodeUnprotected(items[1], dctx)
	if len(aliasRefs) > 0 {
		doc.metadata.foldParameterAliases(aliasRefs, dctx)
	}
	doc.decodePayload(items[2], dctx)
	doc.decodeSignatures(items[3], dctx)
	return doc, nil
}

// decodeEnvelopeTag validates the COSE-Sign tag 98 and returns the
// enclosed content, falling back to the input when the tag is absent
func decodeEnvelopeTag(data []byte, dctx *DecodeContext) []byte {
	var tmpTag cbor.RawTag
	if err := cbor.DecodeFull(data, &tmpTag); err != nil {
		dctx.Report.InvalidEncoding(
			"envelope",
			hex.EncodeToString(firstBytes(data, 8)),
			fmt.Sprintf("must carry CBOR tag %d", cbor.CborTagCoseSign),
			envelopeContext,
		)
		return data
	}
	if tmpTag.Number != cbor.CborTagCoseSign {
		dctx.Report.InvalidEncoding(
			"envelope",
			fmt.Sprintf("tag %d", tmpTag.Number),
			fmt.Sprintf("must carry CBOR tag %d", cbor.CborTagCoseSign),
			envelopeContext,
		)
	}
	return tmpTag.Content
}

func (d *Document) decodeProtected(item cbor.RawMessage, dctx *DecodeContext) {
	d.metadata = &Metadata{fromWire: true}
	var bodyProtected []byte
	if err := cbor.DecodeFull(item, &bodyProtected); err != nil {
		dctx.Report.InvalidEncoding(
			"protected",
			hex.EncodeToString(firstBytes(item, 8)),
			"byte string",
			envelopeContext,
		)
		return
	}
	d.bodyProtected = bodyProtected
	pairs, err := cbor.MapPairs(bodyProtected)
	if err != nil {
		dctx.Report.InvalidEncoding(
			"protected",
			hex.EncodeToString(firstBytes(bodyProtected, 8)),
			"deterministic CBOR map",
			envelopeContext,
		)
		return
	}
	d.metadata = decodeMetadata(pairs, dctx)
}

// decodeUnprotected checks the unprotected header. Known historical
// aliases are collected for folding into parameters; anything else is an
// unknown field.
func decodeUnprotected(item cbor.RawMessage, dctx *DecodeContext) DocumentRefs {
	pairs, err := cbor.MapPairs(item)
	if err != nil {
		dctx.Report.InvalidEncoding(
			"unprotected",
			hex.EncodeToString(firstBytes(item, 8)),
			"map",
			envelopeContext,
		)
		return nil
	}
	var aliasRefs DocumentRefs
	for _, pair := range pairs {
		var label string
		if err := cbor.DecodeFull(pair.RawKey, &label); err != nil {
			dctx.Report.UnknownField(
				hex.EncodeToString(pair.RawKey),
				hex.EncodeToString(pair.RawValue),
				"unprotected",
			)
			continue
		}
		if !parametersAliases[label] {
			dctx.Report.UnknownField(
				label,
				hex.EncodeToString(pair.RawValue),
				"unprotected",
			)
			continue
		}
		ref, ok := decodeAliasValue(pair.RawValue, label, dctx)
		if ok {
			aliasRefs = append(aliasRefs, ref)
		}
	}
	return aliasRefs
}

// decodeAliasValue accepts either a full document reference or the
// historical bare UUIDv7, which names a document whose id equals its ver
func decodeAliasValue(
	rawValue cbor.RawMessage,
	label string,
	dctx *DecodeContext,
) (DocumentRef, bool) {
	if rawValue[0]&cbor.CborTypeMask == cbor.CborTypeArray {
		aliasCtx := &DecodeContext{
			Report:    dctx.Report,
			RefPolicy: RefPolicyAccept,
		}
		ref, err := decodeRef(rawValue, aliasCtx, label)
		if err != nil {
			dctx.Report.InvalidValue(
				label,
				hex.EncodeToString(rawValue),
				err.Error(),
				"unprotected",
			)
			return DocumentRef{}, false
		}
		return ref, true
	}
	var id uuid.V7
	if err := cbor.DecodeFull(rawValue, &id); err != nil {
		dctx.Report.InvalidValue(
			label,
			hex.EncodeToString(rawValue),
			"document reference or UUIDv7",
			"unprotected",
		)
		return DocumentRef{}, false
	}
	return DocumentRef{ID: id, Ver: id}, true
}

// foldParameterAliases merges unprotected alias references into the
// parameters field
func (m *Metadata) foldParameterAliases(refs DocumentRefs, dctx *DecodeContext) {
	if m.Has(FieldParameters) {
		dctx.Report.InvalidValue(
			FieldParameters.Label(),
			refs.String(),
			"parameters and unprotected aliases must not both be present",
			"unprotected",
		)
		return
	}
	if len(refs) != 1 {
		dctx.Report.InvalidValue(
			FieldParameters.Label(),
			refs.String(),
			"only one parameters alias may be present",
			"unprotected",
		)
		return
	}
	rawKey, rawValue, err := encodeField(FieldParameters, refs)
	if err != nil {
		dctx.Report.Other(err.Error(), "unprotected")
		return
	}
	m.fields = append(m.fields, metadataField{
		field:    FieldParameters,
		rawKey:   rawKey,
		rawValue: rawValue,
		value:    refs,
	})
}

func (d *Document) decodePayload(item cbor.RawMessage, dctx *DecodeContext) {
	if cbor.IsNull(item) {
		// detached payload
		return
	}
	var payload []byte
	if err := cbor.DecodeFull(item, &payload); err != nil {
		dctx.Report.InvalidEncoding(
			"payload",
			hex.EncodeToString(firstBytes(item, 8)),
			"byte string or null",
			envelopeContext,
		)
		return
	}
	d.payload = payload
	d.hasPayload = true
}

func (d *Document) decodeSignatures(item cbor.RawMessage, dctx *DecodeContext) {
	sigItems, err := cbor.ArrayItems(item)
	if err != nil {
		dctx.Report.InvalidEncoding(
			"signatures",
			hex.EncodeToString(firstBytes(item, 8)),
			"array",
			signaturesContext,
		)
		return
	}
	for i, sigItem := range sigItems {
		sig, ok := decodeSignature(sigItem, i, dctx)
		if ok {
			d.signatures = append(d.signatures, sig)
		}
	}
}

func firstBytes(data []byte, n int) []byte {
	if len(data) <= n {
		return data
	}
	return data[:n]
}

// Report returns the document's problem report
func (d *Document) Report() *report.Report {
	return d.rpt
}

// Metadata returns the protected header model
func (d *Document) Metadata() *Metadata {
	return d.metadata
}

func (d *Document) Type() uuid.V4 { return d.metadata.Type() }
func (d *Document) ID() uuid.V7   { return d.metadata.ID() }
func (d *Document) Ver() uuid.V7  { return d.metadata.Ver() }

func (d *Document) ContentType() (ContentType, bool) {
	return d.metadata.ContentType()
}

func (d *Document) ContentEncoding() (ContentEncoding, bool) {
	return d.metadata.ContentEncoding()
}

func (d *Document) Ref() DocumentRefs        { return d.metadata.Ref() }
func (d *Document) Template() DocumentRefs   { return d.metadata.Template() }
func (d *Document) Reply() DocumentRefs      { return d.metadata.Reply() }
func (d *Document) Parameters() DocumentRefs { return d.metadata.Parameters() }

func (d *Document) Section() (string, bool) { return d.metadata.Section() }

func (d *Document) Collaborators() []catalystid.CatalystID {
	return d.metadata.Collaborators()
}

func (d *Document) Chain() (Chain, bool) { return d.metadata.Chain() }

// Authors returns the key identifiers of all signers
func (d *Document) Authors() []catalystid.CatalystID {
	return d.signatures.Kids()
}

// SelfRef returns the document's own reference, locating its exact bytes
func (d *Document) SelfRef() (DocumentRef, error) {
	locator, err := LocatorFromContent(d.Bytes())
	if err != nil {
		return DocumentRef{}, err
	}
	return DocumentRef{
		ID:      d.ID(),
		Ver:     d.Ver(),
		Locator: locator,
	}, nil
}

// Payload returns the raw (possibly compressed) payload bytes. The
// second return is false for a detached payload.
func (d *Document) Payload() ([]byte, bool) {
	return d.payload, d.hasPayload
}

// DecodedContent returns the payload after reversing the declared
// content encoding
func (d *Document) DecodedContent() ([]byte, error) {
	if !d.hasPayload {
		return nil, nil
	}
	encoding, ok := d.ContentEncoding()
	if !ok {
		return d.payload, nil
	}
	return DecompressContent(d.payload, encoding)
}

// Signatures returns the signer list
func (d *Document) Signatures() Signatures {
	return d.signatures
}

// ProtectedBytes returns the raw protected header bytes covered by every
// signature
func (d *Document) ProtectedBytes() []byte {
	return d.bodyProtected
}

// ToBeSigned derives the RFC 8152 §4.4 Sig_structure bytes for the
// signature at the given index
func (d *Document) ToBeSigned(index int) ([]byte, error) {
	if index < 0 || index >= len(d.signatures) {
		return nil, fmt.Errorf("no signature at index %d", index)
	}
	return toBeSigned(
		d.bodyProtected,
		d.signatures[index].protected,
		d.payload,
	)
}

// toBeSigned builds the COSE Sig_structure:
//
//	["Signature", body_protected, sign_protected, external_aad, payload]
func toBeSigned(bodyProtected, sigProtected, payload []byte) ([]byte, error) {
	if bodyProtected == nil {
		bodyProtected = []byte{}
	}
	if sigProtected == nil {
		sigProtected = []byte{}
	}
	if payload == nil {
		payload = []byte{}
	}
	return cbor.Encode([]any{
		"Signature",
		bodyProtected,
		sigProtected,
		[]byte{},
		payload,
	})
}

// Bytes returns the document's envelope bytes exactly as decoded or built
func (d *Document) Bytes() []byte {
	return d.Cbor()
}

// assembleEnvelope emits the canonical envelope wire form: tag 98 over
// [protected, {}, payload, signatures]
func assembleEnvelope(
	bodyProtected []byte,
	payload []byte,
	hasPayload bool,
	sigs Signatures,
) []byte {
	// tag 98 with 1-byte argument
	ret := []byte{0xd8, cbor.CborTagCoseSign}
	ret = cbor.AppendUint(ret, cbor.CborTypeArray, 4)
	ret = append(ret, cbor.EncodeByteString(bodyProtected)...)
	// unprotected headers are always empty on emit
	ret = append(ret, cbor.CborTypeMap)
	if hasPayload {
		ret = append(ret, cbor.EncodeByteString(payload)...)
	} else {
		ret = append(ret, cbor.CborNull)
	}
	ret = cbor.AppendUint(ret, cbor.CborTypeArray, uint64(len(sigs)))
	for _, sig := range sigs {
		ret = cbor.AppendUint(ret, cbor.CborTypeArray, 3)
		ret = append(ret, cbor.EncodeByteString(sig.protected)...)
		ret = append(ret, cbor.CborTypeMap)
		ret = append(ret, cbor.EncodeByteString(sig.Bytes)...)
	}
	return ret
}
