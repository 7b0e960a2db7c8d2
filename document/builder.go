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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/report"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
	"github.com/ipfs/go-cid"
)

// Signer produces raw Ed25519 signature bytes over the to-be-signed input
type Signer func(tbs []byte) ([]byte, error)

// MetadataBuilder is the first builder state. Metadata problems accumulate
// in the report without aborting, matching decode behaviour.
type MetadataBuilder struct {
	rpt *report.Report
}

// NewBuilder starts building a document
func NewBuilder() *MetadataBuilder {
	return &MetadataBuilder{
		rpt: report.New("catalyst signed document"),
	}
}

// WithMetadata moves to the content state with an already-populated
// metadata model
func (b *MetadataBuilder) WithMetadata(meta *Metadata) *ContentBuilder {
	if meta == nil {
		meta = &Metadata{}
	}
	for _, required := range []SupportedField{FieldType, FieldID, FieldVer} {
		if !meta.Has(required) {
			b.rpt.MissingField(required.Label(), metadataContext)
		}
	}
	return &ContentBuilder{meta: meta, rpt: b.rpt}
}

// WithJSONMetadata moves to the content state, populating metadata from a
// JSON object. Unknown keys and missing required fields land in the
// report.
func (b *MetadataBuilder) WithJSONMetadata(raw json.RawMessage) *ContentBuilder {
	meta := &Metadata{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		b.rpt.InvalidValue(
			"metadata",
			"",
			"must be a JSON object",
			metadataContext,
		)
		return b.WithMetadata(meta)
	}
	for label, rawValue := range fields {
		field, ok := jsonFieldByLabel(label)
		if !ok {
			b.rpt.UnknownField(label, string(rawValue), metadataContext)
			continue
		}
		value, err := decodeJSONField(field, rawValue)
		if err != nil {
			b.rpt.InvalidValue(
				field.Label(),
				string(rawValue),
				err.Error(),
				metadataContext,
			)
			continue
		}
		if err := meta.AddField(field, value); err != nil {
			b.rpt.InvalidValue(
				field.Label(),
				string(rawValue),
				err.Error(),
				metadataContext,
			)
		}
	}
	return b.WithMetadata(meta)
}

// jsonFieldByLabel resolves JSON metadata keys. JSON input names the
// content type by its textual label.
func jsonFieldByLabel(label string) (SupportedField, bool) {
	if label == "content-type" {
		return FieldContentType, true
	}
	return fieldByLabel(label)
}

type jsonRef struct {
	ID  string `json:"id"`
	Ver string `json:"ver"`
	Cid string `json:"cid,omitempty"`
}

type jsonChain struct {
	Height uint64   `json:"height"`
	Final  bool     `json:"final,omitempty"`
	Ref    *jsonRef `json:"ref,omitempty"`
}

func decodeJSONField(field SupportedField, raw json.RawMessage) (any, error) {
	switch field {
	case FieldType:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return uuid.ParseV4(s)
	case FieldID, FieldVer:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return uuid.ParseV7(s)
	case FieldContentType:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParseContentType(s)
	case FieldContentEncoding:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParseContentEncoding(s)
	case FieldRef, FieldTemplate, FieldReply, FieldParameters:
		return decodeJSONRefs(raw)
	case FieldSection:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case FieldCollaborators:
		var uris []string
		if err := json.Unmarshal(raw, &uris); err != nil {
			return nil, err
		}
		ret := make([]catalystid.CatalystID, 0, len(uris))
		for _, uri := range uris {
			id, err := catalystid.Parse(uri)
			if err != nil {
				return nil, err
			}
			ret = append(ret, id)
		}
		return ret, nil
	case FieldChain:
		var tmp jsonChain
		if err := json.Unmarshal(raw, &tmp); err != nil {
			return nil, err
		}
		ret := Chain{Height: tmp.Height, Final: tmp.Final}
		if tmp.Ref != nil {
			ref, err := tmp.Ref.toRef()
			if err != nil {
				return nil, err
			}
			ret.Document = &ref
		}
		return ret, nil
	}
	return nil, fmt.Errorf("no JSON decoder for field %s", field)
}

// decodeJSONRefs accepts either a single reference object or a list
func decodeJSONRefs(raw json.RawMessage) (DocumentRefs, error) {
	var single jsonRef
	if err := json.Unmarshal(raw, &single); err == nil && single.ID != "" {
		ref, err := single.toRef()
		if err != nil {
			return nil, err
		}
		return DocumentRefs{ref}, nil
	}
	var list []jsonRef
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	ret := make(DocumentRefs, 0, len(list))
	for _, item := range list {
		ref, err := item.toRef()
		if err != nil {
			return nil, err
		}
		ret = append(ret, ref)
	}
	return ret, nil
}

func (r jsonRef) toRef() (DocumentRef, error) {
	var ret DocumentRef
	id, err := uuid.ParseV7(r.ID)
	if err != nil {
		return ret, fmt.Errorf("ref id: %w", err)
	}
	ver, err := uuid.ParseV7(r.Ver)
	if err != nil {
		return ret, fmt.Errorf("ref ver: %w", err)
	}
	ret.ID = id
	ret.Ver = ver
	if r.Cid != "" {
		tmpCid, err := cid.Decode(r.Cid)
		if err != nil {
			return ret, fmt.Errorf("ref cid: %w", err)
		}
		locator, err := NewDocumentLocator(tmpCid)
		if err != nil {
			return ret, err
		}
		ret.Locator = locator
	}
	return ret, nil
}

// ContentBuilder is the second builder state: attach the payload
type ContentBuilder struct {
	meta *Metadata
	rpt  *report.Report
	err  error
}

// Empty moves to the signatures state with a detached payload
func (b *ContentBuilder) Empty() *SignaturesBuilder {
	return b.signaturesBuilder(nil, false)
}

// WithJSONContent serialises the given value as JSON and compresses it
// per the metadata's content encoding. The metadata content type must be
// JSON.
func (b *ContentBuilder) WithJSONContent(v any) *SignaturesBuilder {
	if ct, ok := b.meta.ContentType(); !ok || !ct.IsJSON() {
		b.err = errors.New(
			"json content requires an application/json content type",
		)
		return b.signaturesBuilder(nil, false)
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("serialise json content: %w", err)
		return b.signaturesBuilder(nil, false)
	}
	return b.WithRawContent(data)
}

// WithRawContent compresses the given raw content per the metadata's
// content encoding and moves to the signatures state
func (b *ContentBuilder) WithRawContent(data []byte) *SignaturesBuilder {
	if b.err != nil {
		return b.signaturesBuilder(nil, false)
	}
	encoding, ok := b.meta.ContentEncoding()
	if !ok {
		return b.signaturesBuilder(data, true)
	}
	compressed, err := CompressContent(data, encoding)
	if err != nil {
		b.err = fmt.Errorf("compress content: %w", err)
		return b.signaturesBuilder(nil, false)
	}
	return b.signaturesBuilder(compressed, true)
}

func (b *ContentBuilder) signaturesBuilder(
	payload []byte,
	hasPayload bool,
) *SignaturesBuilder {
	return &SignaturesBuilder{
		meta:          b.meta,
		bodyProtected: b.meta.Encode(),
		payload:       payload,
		hasPayload:    hasPayload,
		rpt:           b.rpt,
		err:           b.err,
	}
}

// SignaturesBuilder is the final builder state: collect signatures and
// build the envelope. The protected header bytes are frozen on entry, so
// adding signatures never disturbs existing ones.
type SignaturesBuilder struct {
	meta          *Metadata
	bodyProtected []byte
	payload       []byte
	hasPayload    bool
	signatures    Signatures
	rpt           *report.Report
	err           error
}

// AddSignature derives the to-be-signed bytes for the given key
// identifier, invokes the signer, and appends the produced signature. Any
// number of signatures may be added.
func (b *SignaturesBuilder) AddSignature(
	signer Signer,
	kid catalystid.CatalystID,
) *SignaturesBuilder {
	if b.err != nil {
		return b
	}
	if signer == nil {
		b.err = errors.New("nil signer")
		return b
	}
	sig := newSignature(kid, nil)
	tbs, err := toBeSigned(b.bodyProtected, sig.protected, b.payload)
	if err != nil {
		b.err = fmt.Errorf("derive to-be-signed bytes: %w", err)
		return b
	}
	sigBytes, err := signer(tbs)
	if err != nil {
		b.err = fmt.Errorf("signer for %s: %w", kid.Short(), err)
		return b
	}
	if len(sigBytes) != signatureSize {
		b.err = fmt.Errorf(
			"signer for %s returned %d bytes, expected %d",
			kid.Short(),
			len(sigBytes),
			signatureSize,
		)
		return b
	}
	sig.Bytes = sigBytes
	b.signatures = append(b.signatures, sig)
	return b
}

// Build assembles the final immutable document
func (b *SignaturesBuilder) Build() (*Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	doc := &Document{
		bodyProtected: b.bodyProtected,
		metadata:      b.meta,
		payload:       b.payload,
		hasPayload:    b.hasPayload,
		signatures:    b.signatures,
		rpt:           b.rpt,
	}
	doc.SetCbor(assembleEnvelope(
		b.bodyProtected,
		b.payload,
		b.hasPayload,
		b.signatures,
	))
	return doc, nil
}

// IntoBuilder re-enters a document at the signatures state so further
// signatures can be appended. The protected header and payload bytes are
// carried over verbatim, preserving the validity of existing signatures.
func IntoBuilder(doc *Document) (*SignaturesBuilder, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	if doc.rpt.IsProblematic() {
		return nil, fmt.Errorf(
			"cannot extend a problematic document: %s",
			doc.rpt,
		)
	}
	signatures := make(Signatures, len(doc.signatures))
	copy(signatures, doc.signatures)
	return &SignaturesBuilder{
		meta:          doc.metadata,
		bodyProtected: doc.bodyProtected,
		payload:       doc.payload,
		hasPayload:    doc.hasPayload,
		signatures:    signatures,
		rpt:           doc.rpt,
	}, nil
}
