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
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrLocatorShape   = errors.New("document locator must be a one-entry map with key \"cid\"")
	ErrLocatorTag     = errors.New("document locator CID must carry CBOR tag 42")
	ErrLocatorVersion = errors.New("document locator must be a CIDv1")
)

// Tag 42 content carries a multibase identity prefix before the CID bytes
const cidIdentityPrefix = 0x00

// DocumentLocator is a content-addressed pointer to where a referenced
// document's exact bytes live. On the wire it is a one-entry map
// {"cid" => tag(42, bytes)}.
type DocumentLocator struct {
	cid cid.Cid
}

// NewDocumentLocator wraps an existing CID
func NewDocumentLocator(c cid.Cid) (DocumentLocator, error) {
	if c.Defined() && c.Version() != 1 {
		return DocumentLocator{}, ErrLocatorVersion
	}
	return DocumentLocator{cid: c}, nil
}

// LocatorFromContent derives the locator for the given document bytes:
// a CIDv1 with the raw codec over a blake2b-256 multihash
func LocatorFromContent(data []byte) (DocumentLocator, error) {
	digest := blake2b.Sum256(data)
	mh, err := multihash.Encode(digest[:], multihash.BLAKE2B_MIN+31)
	if err != nil {
		return DocumentLocator{}, err
	}
	return DocumentLocator{cid: cid.NewCidV1(cid.Raw, mh)}, nil
}

// Cid returns the wrapped CID. The zero locator returns cid.Undef.
func (l DocumentLocator) Cid() cid.Cid {
	return l.cid
}

// IsZero returns true for the empty locator placeholder
func (l DocumentLocator) IsZero() bool {
	return !l.cid.Defined()
}

func (l DocumentLocator) Equal(other DocumentLocator) bool {
	return l.cid.Equals(other.cid)
}

func (l DocumentLocator) String() string {
	if l.IsZero() {
		return "cid://"
	}
	return "cid://" + l.cid.String()
}

func (l *DocumentLocator) UnmarshalCBOR(data []byte) error {
	pairs, err := cbor.MapPairs(data)
	if err != nil {
		return err
	}
	if len(pairs) != 1 {
		return fmt.Errorf("%w, got %d entries", ErrLocatorShape, len(pairs))
	}
	var key string
	if err := cbor.DecodeFull(pairs[0].RawKey, &key); err != nil {
		return fmt.Errorf("%w: %w", ErrLocatorShape, err)
	}
	if key != "cid" {
		return fmt.Errorf("%w, got key %q", ErrLocatorShape, key)
	}
	var tmpTag cbor.RawTag
	if err := cbor.DecodeFull(pairs[0].RawValue, &tmpTag); err != nil {
		return fmt.Errorf("%w: %w", ErrLocatorTag, err)
	}
	if tmpTag.Number != cbor.CborTagCid {
		return fmt.Errorf("%w, got tag %d", ErrLocatorTag, tmpTag.Number)
	}
	var cidBytes []byte
	if err := cbor.DecodeFull(tmpTag.Content, &cidBytes); err != nil {
		return err
	}
	// Empty bytes are the placeholder locator
	if len(cidBytes) == 0 {
		l.cid = cid.Undef
		return nil
	}
	if cidBytes[0] != cidIdentityPrefix {
		return fmt.Errorf(
			"unexpected multibase prefix 0x%02x in tag 42 content",
			cidBytes[0],
		)
	}
	tmpCid, err := cid.Cast(cidBytes[1:])
	if err != nil {
		return err
	}
	if tmpCid.Version() != 1 {
		return fmt.Errorf("%w, got CIDv%d", ErrLocatorVersion, tmpCid.Version())
	}
	l.cid = tmpCid
	return nil
}

func (l DocumentLocator) MarshalCBOR() ([]byte, error) {
	cidBytes := []byte{}
	if l.cid.Defined() {
		cidBytes = append([]byte{cidIdentityPrefix}, l.cid.Bytes()...)
	}
	return cbor.Encode(map[string]cbor.Tag{
		"cid": {
			Number:  cbor.CborTagCid,
			Content: cidBytes,
		},
	})
}
