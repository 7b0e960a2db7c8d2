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
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

const metadataContext = "metadata"

// metadataField is one protected header entry. The raw key and value
// bytes are kept so a decoded header re-encodes to the exact bytes that
// were signed.
type metadataField struct {
	field    SupportedField
	rawKey   cbor.RawMessage
	rawValue cbor.RawMessage
	value    any
}

// Metadata is the protected header map of a signed document. A decoded
// Metadata preserves wire order and raw bytes; a built Metadata emits
// entries in core deterministic key order.
type Metadata struct {
	fields   []metadataField
	fromWire bool
}

// decodeMetadata parses the protected header map pairs, collecting every
// violation into the decode context's report
func decodeMetadata(pairs []cbor.MapPair, dctx *DecodeContext) *Metadata {
	ret := &Metadata{fromWire: true}
	seen := map[SupportedField]bool{}
	for _, pair := range pairs {
		field, ok := resolveFieldKey(pair, dctx)
		if !ok {
			continue
		}
		if seen[field] {
			dctx.Report.InvalidValue(
				field.Label(),
				hex.EncodeToString(pair.RawKey),
				"each header field may appear only once",
				metadataContext,
			)
			continue
		}
		value, err := decodeFieldValue(field, pair.RawValue, dctx)
		if err != nil {
			reportFieldError(field, pair.RawValue, err, dctx)
			continue
		}
		seen[field] = true
		ret.fields = append(ret.fields, metadataField{
			field:    field,
			rawKey:   pair.RawKey,
			rawValue: pair.RawValue,
			value:    value,
		})
	}
	for _, required := range []SupportedField{FieldType, FieldID, FieldVer} {
		if !seen[required] {
			dctx.Report.MissingField(required.Label(), metadataContext)
		}
	}
	if id, okId := ret.lookup(FieldID); okId {
		if ver, okVer := ret.lookup(FieldVer); okVer {
			idVal, okCastId := id.(uuid.V7)
			verVal, okCastVer := ver.(uuid.V7)
			if okCastId && okCastVer && verVal.Before(idVal) {
				dctx.Report.InvalidValue(
					FieldVer.Label(),
					verVal.String(),
					"ver must not precede id",
					metadataContext,
				)
			}
		}
	}
	return ret
}

// resolveFieldKey maps a raw map key to a supported field. COSE integer
// labels and Catalyst text labels are both in the closed set; anything
// else lands in the report.
func resolveFieldKey(pair cbor.MapPair, dctx *DecodeContext) (SupportedField, bool) {
	keyType := pair.RawKey[0] & cbor.CborTypeMask
	switch keyType {
	case cbor.CborTypeUint:
		label, err := cbor.CanonicalUint(pair.RawKey)
		if err != nil {
			dctx.Report.InvalidEncoding(
				"",
				hex.EncodeToString(pair.RawKey),
				"shortest-form integer key",
				metadataContext,
			)
			return 0, false
		}
		switch label {
		case coseLabelAlg:
			// The algorithm is fixed to EdDSA; it is validated and not
			// retained as a metadata field
			checkAlgHeader(pair.RawValue, dctx)
			return 0, false
		case coseLabelContentType:
			return FieldContentType, true
		}
		dctx.Report.UnknownField(
			fmt.Sprintf("%d", label),
			hex.EncodeToString(pair.RawValue),
			metadataContext,
		)
		return 0, false
	case cbor.CborTypeTextString:
		var label string
		if err := cbor.DecodeFull(pair.RawKey, &label); err != nil {
			dctx.Report.InvalidEncoding(
				"",
				hex.EncodeToString(pair.RawKey),
				"text string key",
				metadataContext,
			)
			return 0, false
		}
		if field, ok := fieldByLabel(label); ok {
			return field, true
		}
		dctx.Report.UnknownField(
			label,
			hex.EncodeToString(pair.RawValue),
			metadataContext,
		)
		return 0, false
	}
	dctx.Report.InvalidEncoding(
		"",
		hex.EncodeToString(pair.RawKey),
		"integer or text string key",
		metadataContext,
	)
	return 0, false
}

func checkAlgHeader(rawValue cbor.RawMessage, dctx *DecodeContext) {
	var alg int64
	if err := cbor.DecodeFull(rawValue, &alg); err != nil {
		dctx.Report.InvalidEncoding(
			"alg",
			hex.EncodeToString(rawValue),
			"integer algorithm identifier",
			metadataContext,
		)
		return
	}
	if alg != coseAlgEdDSA {
		dctx.Report.InvalidValue(
			"alg",
			fmt.Sprintf("%d", alg),
			fmt.Sprintf("must be EdDSA (%d)", coseAlgEdDSA),
			metadataContext,
		)
	}
}

// decodeFieldValue runs the type-specific decoder for a field
func decodeFieldValue(
	field SupportedField,
	rawValue cbor.RawMessage,
	dctx *DecodeContext,
) (any, error) {
	switch field {
	case FieldType:
		var val uuid.V4
		err := cbor.DecodeFull(rawValue, &val)
		return val, err
	case FieldID, FieldVer:
		var val uuid.V7
		err := cbor.DecodeFull(rawValue, &val)
		return val, err
	case FieldContentType:
		return decodeContentType(rawValue)
	case FieldContentEncoding:
		var val string
		if err := cbor.DecodeFull(rawValue, &val); err != nil {
			return nil, err
		}
		return ParseContentEncoding(val)
	case FieldRef, FieldTemplate, FieldReply, FieldParameters:
		refs, err := decodeRefs(rawValue, dctx, field.Label())
		if err != nil {
			return nil, err
		}
		if singleRefFields[field] && len(refs) != 1 {
			return nil, fmt.Errorf(
				"%s must hold exactly one reference, got %d",
				field.Label(),
				len(refs),
			)
		}
		return refs, nil
	case FieldSection:
		var val string
		if err := cbor.DecodeFull(rawValue, &val); err != nil {
			return nil, err
		}
		if err := checkJSONPointer(val); err != nil {
			return nil, err
		}
		return val, nil
	case FieldCollaborators:
		var val []catalystid.CatalystID
		if err := cbor.DecodeFull(rawValue, &val); err != nil {
			return nil, err
		}
		if len(val) == 0 {
			return nil, errors.New("collaborators list must not be empty")
		}
		return val, nil
	case FieldChain:
		return decodeChain(rawValue, dctx, field.Label())
	}
	return nil, fmt.Errorf("no decoder for field %s", field)
}

func decodeContentType(rawValue cbor.RawMessage) (ContentType, error) {
	switch rawValue[0] & cbor.CborTypeMask {
	case cbor.CborTypeTextString:
		var val string
		if err := cbor.DecodeFull(rawValue, &val); err != nil {
			return ContentTypeUnknown, err
		}
		return ParseContentType(val)
	case cbor.CborTypeUint:
		code, err := cbor.CanonicalUint(rawValue)
		if err != nil {
			return ContentTypeUnknown, err
		}
		if ct, ok := contentTypesByCoap[code]; ok {
			return ct, nil
		}
		return ContentTypeUnknown, fmt.Errorf(
			"unsupported CoAP content format: %d",
			code,
		)
	}
	return ContentTypeUnknown, errors.New(
		"content type must be a text string or CoAP code",
	)
}

// checkJSONPointer validates RFC 6901 syntax
func checkJSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("JSON pointer must start with '/': %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			continue
		}
		if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
			return fmt.Errorf("invalid JSON pointer escape in %q", s)
		}
	}
	return nil
}

func reportFieldError(
	field SupportedField,
	rawValue cbor.RawMessage,
	err error,
	dctx *DecodeContext,
) {
	if refFields[field] &&
		(errors.Is(err, ErrRefLegacy) || errors.Is(err, ErrRefShape) ||
			errors.Is(err, ErrRefListShape)) {
		dctx.Report.InvalidEncoding(
			field.Label(),
			hex.EncodeToString(rawValue),
			"DocumentRef decoding",
			metadataContext,
		)
		return
	}
	dctx.Report.InvalidValue(
		field.Label(),
		hex.EncodeToString(rawValue),
		err.Error(),
		metadataContext,
	)
}

func (m *Metadata) lookup(field SupportedField) (any, bool) {
	for _, item := range m.fields {
		if item.field == field {
			return item.value, true
		}
	}
	return nil, false
}

// Has returns true if the field is present
func (m *Metadata) Has(field SupportedField) bool {
	_, ok := m.lookup(field)
	return ok
}

// Fields returns the present fields in stored order
func (m *Metadata) Fields() []SupportedField {
	ret := make([]SupportedField, 0, len(m.fields))
	for _, item := range m.fields {
		ret = append(ret, item.field)
	}
	return ret
}

// Type returns the document type discriminator, or the zero UUID when
// absent
func (m *Metadata) Type() uuid.V4 {
	if val, ok := m.lookup(FieldType); ok {
		if ret, ok := val.(uuid.V4); ok {
			return ret
		}
	}
	return uuid.V4{}
}

// ID returns the document ID, or the zero UUID when absent
func (m *Metadata) ID() uuid.V7 {
	if val, ok := m.lookup(FieldID); ok {
		if ret, ok := val.(uuid.V7); ok {
			return ret
		}
	}
	return uuid.V7{}
}

// Ver returns the document version, or the zero UUID when absent
func (m *Metadata) Ver() uuid.V7 {
	if val, ok := m.lookup(FieldVer); ok {
		if ret, ok := val.(uuid.V7); ok {
			return ret
		}
	}
	return uuid.V7{}
}

func (m *Metadata) ContentType() (ContentType, bool) {
	if val, ok := m.lookup(FieldContentType); ok {
		if ret, ok := val.(ContentType); ok {
			return ret, true
		}
	}
	return ContentTypeUnknown, false
}

func (m *Metadata) ContentEncoding() (ContentEncoding, bool) {
	if val, ok := m.lookup(FieldContentEncoding); ok {
		if ret, ok := val.(ContentEncoding); ok {
			return ret, true
		}
	}
	return ContentEncodingRaw, false
}

func (m *Metadata) refsField(field SupportedField) DocumentRefs {
	if val, ok := m.lookup(field); ok {
		if ret, ok := val.(DocumentRefs); ok {
			return ret
		}
	}
	return nil
}

func (m *Metadata) Ref() DocumentRefs        { return m.refsField(FieldRef) }
func (m *Metadata) Template() DocumentRefs   { return m.refsField(FieldTemplate) }
func (m *Metadata) Reply() DocumentRefs      { return m.refsField(FieldReply) }
func (m *Metadata) Parameters() DocumentRefs { return m.refsField(FieldParameters) }

func (m *Metadata) Section() (string, bool) {
	if val, ok := m.lookup(FieldSection); ok {
		if ret, ok := val.(string); ok {
			return ret, true
		}
	}
	return "", false
}

func (m *Metadata) Collaborators() []catalystid.CatalystID {
	if val, ok := m.lookup(FieldCollaborators); ok {
		if ret, ok := val.([]catalystid.CatalystID); ok {
			return ret
		}
	}
	return nil
}

func (m *Metadata) Chain() (Chain, bool) {
	if val, ok := m.lookup(FieldChain); ok {
		if ret, ok := val.(Chain); ok {
			return ret, true
		}
	}
	return Chain{}, false
}

// AddField sets a field value. Used by the builder; decoded metadata is
// immutable.
func (m *Metadata) AddField(field SupportedField, value any) error {
	if m.fromWire {
		return errors.New("decoded metadata is immutable")
	}
	if m.Has(field) {
		return fmt.Errorf("field %s already set", field)
	}
	rawKey, rawValue, err := encodeField(field, value)
	if err != nil {
		return err
	}
	m.fields = append(m.fields, metadataField{
		field:    field,
		rawKey:   rawKey,
		rawValue: rawValue,
		value:    value,
	})
	return nil
}

// encodeField produces deterministic raw key and value bytes for a field
func encodeField(field SupportedField, value any) (cbor.RawMessage, cbor.RawMessage, error) {
	var rawKey []byte
	if field == FieldContentType {
		rawKey = cbor.AppendUint(nil, cbor.CborTypeUint, coseLabelContentType)
	} else {
		var err error
		rawKey, err = cbor.Encode(field.Label())
		if err != nil {
			return nil, nil, err
		}
	}
	var encodable any
	switch field {
	case FieldType:
		val, ok := value.(uuid.V4)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a UUIDv4", field)
		}
		encodable = val
	case FieldID, FieldVer:
		val, ok := value.(uuid.V7)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a UUIDv7", field)
		}
		encodable = val
	case FieldContentType:
		val, ok := value.(ContentType)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a ContentType", field)
		}
		encodable = val.String()
	case FieldContentEncoding:
		val, ok := value.(ContentEncoding)
		if !ok || val == ContentEncodingRaw {
			return nil, nil, fmt.Errorf(
				"%s requires a non-raw ContentEncoding",
				field,
			)
		}
		encodable = val.String()
	case FieldRef, FieldTemplate, FieldReply, FieldParameters:
		val, ok := value.(DocumentRefs)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires DocumentRefs", field)
		}
		if len(val) == 0 {
			return nil, nil, fmt.Errorf("%s must not be empty", field)
		}
		if singleRefFields[field] && len(val) != 1 {
			return nil, nil, fmt.Errorf(
				"%s must hold exactly one reference",
				field,
			)
		}
		encodable = val
	case FieldSection:
		val, ok := value.(string)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a string", field)
		}
		if err := checkJSONPointer(val); err != nil {
			return nil, nil, err
		}
		encodable = val
	case FieldCollaborators:
		val, ok := value.([]catalystid.CatalystID)
		if !ok || len(val) == 0 {
			return nil, nil, fmt.Errorf(
				"%s requires a non-empty CatalystID list",
				field,
			)
		}
		encodable = val
	case FieldChain:
		val, ok := value.(Chain)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a Chain", field)
		}
		encodable = val
	default:
		return nil, nil, fmt.Errorf("no encoder for field %s", field)
	}
	rawValue, err := cbor.Encode(encodable)
	if err != nil {
		return nil, nil, err
	}
	return rawKey, rawValue, nil
}

// Encode emits the deterministic protected header map. Decoded metadata
// re-emits the exact decoded bytes in wire order; built metadata emits
// entries in core deterministic key order.
func (m *Metadata) Encode() []byte {
	pairs := make([]cbor.MapPair, 0, len(m.fields))
	for _, item := range m.fields {
		pairs = append(pairs, cbor.MapPair{
			RawKey:   item.rawKey,
			RawValue: item.rawValue,
		})
	}
	if !m.fromWire {
		sort.SliceStable(pairs, func(i, j int) bool {
			a, b := pairs[i].RawKey, pairs[j].RawKey
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			return bytes.Compare(a, b) < 0
		})
	}
	return cbor.EncodeMapFromPairs(pairs)
}
