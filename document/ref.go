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
	"errors"
	"fmt"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
	"github.com/blinklabs-io/catalyst-signed-doc/report"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// RefPolicy controls how the decoder treats the legacy two-element
// document reference form (tag(id), tag(ver)) without a locator
type RefPolicy int

const (
	// RefPolicyFail rejects the legacy form
	RefPolicyFail RefPolicy = iota
	// RefPolicyWarn accepts the legacy form with a report warning; the
	// locator defaults to the empty placeholder
	RefPolicyWarn
	// RefPolicyAccept accepts the legacy form silently
	RefPolicyAccept
)

// DecodeContext carries decode-time options and the problem report shared
// by every nested decoder. Policy lives here rather than in the types so
// the same types serve strict and lenient callers.
type DecodeContext struct {
	Report    *report.Report
	RefPolicy RefPolicy
}

var (
	ErrRefShape     = errors.New("document reference must be a 3-element array")
	ErrRefLegacy    = errors.New("legacy 2-element document reference")
	ErrRefOrder     = errors.New("document reference ver precedes id")
	ErrRefListShape = errors.New("document reference list must be an array")
)

// DocumentRef points to a specific version of a document: the document ID,
// the version, and a content-addressed locator for the exact bytes
type DocumentRef struct {
	ID      uuid.V7
	Ver     uuid.V7
	Locator DocumentLocator
}

func (r DocumentRef) String() string {
	return fmt.Sprintf("id: %s, ver: %s, cid: %s", r.ID, r.Ver, r.Locator)
}

// Equal is componentwise equality
func (r DocumentRef) Equal(other DocumentRef) bool {
	return r.ID.Equal(other.ID) &&
		r.Ver.Equal(other.Ver) &&
		r.Locator.Equal(other.Locator)
}

// Key returns a comparable form usable as a map key for visited-set
// traversal. The locator is excluded: (id, ver) names the document.
func (r DocumentRef) Key() string {
	return r.ID.String() + "/" + r.Ver.String()
}

// decodeRef decodes a single document reference, honoring the legacy
// policy from the decode context
func decodeRef(data []byte, dctx *DecodeContext, context string) (DocumentRef, error) {
	var ret DocumentRef
	items, err := cbor.ArrayItems(data)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrRefShape, err)
	}
	switch len(items) {
	case 2:
		switch dctx.RefPolicy {
		case RefPolicyFail:
			return ret, ErrRefLegacy
		case RefPolicyWarn:
			dctx.Report.Warning(
				"legacy 2-element document reference accepted, locator is empty",
				context,
			)
		case RefPolicyAccept:
			// tolerated silently
		}
	case 3:
		if err := cbor.DecodeFull(items[2], &ret.Locator); err != nil {
			return ret, err
		}
	default:
		return ret, fmt.Errorf("%w, got %d elements", ErrRefShape, len(items))
	}
	if err := cbor.DecodeFull(items[0], &ret.ID); err != nil {
		return ret, fmt.Errorf("document reference id: %w", err)
	}
	if err := cbor.DecodeFull(items[1], &ret.Ver); err != nil {
		return ret, fmt.Errorf("document reference ver: %w", err)
	}
	// UUIDv7 timestamps are monotone, so ver >= id always holds for a
	// well-formed reference
	if ret.Ver.Before(ret.ID) {
		return ret, fmt.Errorf(
			"%w: id %s, ver %s",
			ErrRefOrder,
			ret.ID,
			ret.Ver,
		)
	}
	return ret, nil
}

// DocumentRefs is an ordered list of document references. Order is
// significant for multi-reference fields.
type DocumentRefs []DocumentRef

// decodeRefs decodes a reference list. The legacy single-reference form
// (a bare 2-element array of tagged UUIDs) is distinguished from the
// modern list form by the major type of the first element.
func decodeRefs(data []byte, dctx *DecodeContext, context string) (DocumentRefs, error) {
	items, err := cbor.ArrayItems(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefListShape, err)
	}
	if len(items) == 0 {
		return nil, errors.New("document reference list must not be empty")
	}
	// A legacy single reference is an array of tags rather than an array
	// of arrays
	if items[0][0]&cbor.CborTypeMask == cbor.CborTypeTag {
		ref, err := decodeRef(data, dctx, context)
		if err != nil {
			return nil, err
		}
		return DocumentRefs{ref}, nil
	}
	ret := make(DocumentRefs, 0, len(items))
	for i, item := range items {
		ref, err := decodeRef(item, dctx, fmt.Sprintf("%s[%d]", context, i))
		if err != nil {
			return nil, err
		}
		ret = append(ret, ref)
	}
	return ret, nil
}

func (r DocumentRefs) MarshalCBOR() ([]byte, error) {
	ret := []any{}
	for _, ref := range r {
		ret = append(ret, []any{ref.ID, ref.Ver, ref.Locator})
	}
	return cbor.Encode(ret)
}

// Contains checks list membership by (id, ver) identity
func (r DocumentRefs) Contains(ref DocumentRef) bool {
	for _, item := range r {
		if item.ID.Equal(ref.ID) && item.Ver.Equal(ref.Ver) {
			return true
		}
	}
	return false
}

func (r DocumentRefs) String() string {
	ret := ""
	for i, ref := range r {
		if i > 0 {
			ret += ", "
		}
		ret += "[" + ref.String() + "]"
	}
	return ret
}
