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

// Package uuid provides version-checked UUID types for Catalyst signed
// documents. Document types are UUIDv4; document IDs and versions are
// UUIDv7, whose leading bits carry a millisecond timestamp. On the wire a
// UUID is CBOR tag 37 over a 16-byte string.
package uuid

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
	_uuid "github.com/google/uuid"
)

var (
	ErrWrongTag     = errors.New("expected CBOR tag 37")
	ErrWrongLength  = errors.New("UUID must be 16 bytes")
	ErrWrongVersion = errors.New("unexpected UUID version")
)

// V4 is a random UUID used as a document type discriminator
type V4 struct {
	uuid _uuid.UUID
}

// V7 is a timestamp-ordered UUID used for document IDs and versions
type V7 struct {
	uuid _uuid.UUID
}

// NewV4 generates a random V4 UUID
func NewV4() V4 {
	return V4{uuid: _uuid.New()}
}

// NewV7 generates a V7 UUID at the current time
func NewV7() V7 {
	tmpUuid, err := _uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source fails
		panic(err)
	}
	return V7{uuid: tmpUuid}
}

// NewV7AtTime generates a V7 UUID with the timestamp bits set from the
// given time
func NewV7AtTime(t time.Time) V7 {
	tmpUuid, err := _uuid.NewV7()
	if err != nil {
		panic(err)
	}
	ms := uint64(t.UnixMilli()) // #nosec G115
	tmpUuid[0] = byte(ms >> 40)
	tmpUuid[1] = byte(ms >> 32)
	tmpUuid[2] = byte(ms >> 24)
	tmpUuid[3] = byte(ms >> 16)
	tmpUuid[4] = byte(ms >> 8)
	tmpUuid[5] = byte(ms)
	return V7{uuid: tmpUuid}
}

// ParseV4 parses the string form of a V4 UUID
func ParseV4(s string) (V4, error) {
	tmpUuid, err := _uuid.Parse(s)
	if err != nil {
		return V4{}, err
	}
	if tmpUuid.Version() != 4 {
		return V4{}, fmt.Errorf(
			"%w: expected 4, got %d",
			ErrWrongVersion,
			tmpUuid.Version(),
		)
	}
	return V4{uuid: tmpUuid}, nil
}

// ParseV7 parses the string form of a V7 UUID
func ParseV7(s string) (V7, error) {
	tmpUuid, err := _uuid.Parse(s)
	if err != nil {
		return V7{}, err
	}
	if tmpUuid.Version() != 7 {
		return V7{}, fmt.Errorf(
			"%w: expected 7, got %d",
			ErrWrongVersion,
			tmpUuid.Version(),
		)
	}
	return V7{uuid: tmpUuid}, nil
}

func (u V4) String() string {
	return u.uuid.String()
}

func (u V7) String() string {
	return u.uuid.String()
}

func (u V4) Bytes() []byte {
	ret := make([]byte, 16)
	copy(ret, u.uuid[:])
	return ret
}

func (u V7) Bytes() []byte {
	ret := make([]byte, 16)
	copy(ret, u.uuid[:])
	return ret
}

// IsZero returns true for the zero value
func (u V4) IsZero() bool {
	return u.uuid == _uuid.Nil
}

// IsZero returns true for the zero value
func (u V7) IsZero() bool {
	return u.uuid == _uuid.Nil
}

func (u V4) Equal(other V4) bool {
	return u.uuid == other.uuid
}

func (u V7) Equal(other V7) bool {
	return u.uuid == other.uuid
}

// Time extracts the millisecond timestamp from the UUID
func (u V7) Time() time.Time {
	ms := int64(u.uuid[0])<<40 | int64(u.uuid[1])<<32 |
		int64(u.uuid[2])<<24 | int64(u.uuid[3])<<16 |
		int64(u.uuid[4])<<8 | int64(u.uuid[5])
	return time.UnixMilli(ms).UTC()
}

// Before orders by (timestamp, remaining bytes)
func (u V7) Before(other V7) bool {
	return bytes.Compare(u.uuid[:], other.uuid[:]) < 0
}

// After orders by (timestamp, remaining bytes)
func (u V7) After(other V7) bool {
	return bytes.Compare(u.uuid[:], other.uuid[:]) > 0
}

func decodeTagged(data []byte, version int) (_uuid.UUID, error) {
	var tmpTag cbor.RawTag
	if err := cbor.DecodeFull(data, &tmpTag); err != nil {
		return _uuid.Nil, err
	}
	if tmpTag.Number != cbor.CborTagUuid {
		return _uuid.Nil, fmt.Errorf(
			"%w, got %d",
			ErrWrongTag,
			tmpTag.Number,
		)
	}
	var tmpBytes []byte
	if err := cbor.DecodeFull(tmpTag.Content, &tmpBytes); err != nil {
		return _uuid.Nil, err
	}
	if len(tmpBytes) != 16 {
		return _uuid.Nil, fmt.Errorf(
			"%w, got %d",
			ErrWrongLength,
			len(tmpBytes),
		)
	}
	tmpUuid, err := _uuid.FromBytes(tmpBytes)
	if err != nil {
		return _uuid.Nil, err
	}
	if int(tmpUuid.Version()) != version {
		return _uuid.Nil, fmt.Errorf(
			"%w: expected %d, got %d",
			ErrWrongVersion,
			version,
			tmpUuid.Version(),
		)
	}
	return tmpUuid, nil
}

func encodeTagged(u _uuid.UUID) ([]byte, error) {
	return cbor.Encode(cbor.Tag{
		Number:  cbor.CborTagUuid,
		Content: u[:],
	})
}

func (u *V4) UnmarshalCBOR(data []byte) error {
	tmpUuid, err := decodeTagged(data, 4)
	if err != nil {
		return err
	}
	u.uuid = tmpUuid
	return nil
}

func (u V4) MarshalCBOR() ([]byte, error) {
	return encodeTagged(u.uuid)
}

func (u *V7) UnmarshalCBOR(data []byte) error {
	tmpUuid, err := decodeTagged(data, 7)
	if err != nil {
		return err
	}
	u.uuid = tmpUuid
	return nil
}

func (u V7) MarshalCBOR() ([]byte, error) {
	return encodeTagged(u.uuid)
}
