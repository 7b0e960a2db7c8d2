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

package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// MapPair holds the raw bytes of one map entry. Keeping keys and values
// in wire form lets the metadata decoder re-run type-specific decoding
// per key while preserving exact bytes for signing.
type MapPair struct {
	RawKey   RawMessage
	RawValue RawMessage
}

var (
	ErrIndefiniteLength = errors.New("indefinite-length items are not allowed")
	ErrDuplicateMapKey  = errors.New("duplicate map key")
	ErrNotCanonicalUint = errors.New("integer not in shortest form")
)

// headerInfo extracts the item count and header size from a CBOR container
// header of the expected major type.
// Returns (count, headerSize, error).
func headerInfo(data []byte, majorType uint8) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.New("unexpected end of data")
	}
	firstByte := data[0]
	if firstByte&CborTypeMask != majorType {
		return 0, 0, fmt.Errorf(
			"expected major type 0x%x, got 0x%x",
			majorType,
			firstByte&CborTypeMask,
		)
	}
	additional := firstByte & 0x1f
	switch {
	case additional <= CborMaxUintSimple:
		return int(additional), 1, nil
	case additional == 24 && len(data) >= 2:
		return int(data[1]), 2, nil
	case additional == 25 && len(data) >= 3:
		return int(uint16(data[1])<<8 | uint16(data[2])), 3, nil
	case additional == 26 && len(data) >= 5:
		// Check for overflow before converting to int
		len32 := uint32(data[1])<<24 | uint32(data[2])<<16 |
			uint32(data[3])<<8 | uint32(data[4])
		if len32 > uint32(math.MaxInt32) {
			return 0, 0, errors.New("length exceeds maximum int32 value")
		}
		return int(len32), 5, nil
	case additional == 27 && len(data) >= 9:
		len64 := uint64(data[1])<<56 | uint64(data[2])<<48 |
			uint64(data[3])<<40 | uint64(data[4])<<32 |
			uint64(data[5])<<24 | uint64(data[6])<<16 |
			uint64(data[7])<<8 | uint64(data[8])
		if len64 > uint64(math.MaxInt32) {
			return 0, 0, errors.New("length exceeds maximum int32 value")
		}
		return int(len64), 9, nil
	case additional == CborIndefLength:
		return 0, 0, ErrIndefiniteLength
	default:
		return 0, 0, fmt.Errorf("invalid additional info: %d", additional)
	}
}

// rawItems reads n consecutive CBOR items from data, returning their raw bytes
func rawItems(data []byte, n int) ([]RawMessage, error) {
	decMode, err := getDecMode()
	if err != nil {
		return nil, err
	}
	dec := decMode.NewDecoder(bytes.NewReader(data))
	items := make([]RawMessage, 0, n)
	for range n {
		var item RawMessage
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if dec.NumBytesRead() != len(data) {
		return nil, errors.New("trailing data after container items")
	}
	return items, nil
}

// MapPairs parses a definite-length CBOR map into ordered raw key/value
// pairs. Indefinite-length maps and duplicate keys (by raw bytes) are
// errors.
func MapPairs(data []byte) ([]MapPair, error) {
	count, headerLen, err := headerInfo(data, CborTypeMap)
	if err != nil {
		return nil, err
	}
	items, err := rawItems(data[headerLen:], count*2)
	if err != nil {
		return nil, err
	}
	pairs := make([]MapPair, 0, count)
	seen := make(map[string]struct{}, count)
	for i := range count {
		rawKey := items[i*2]
		if _, ok := seen[string(rawKey)]; ok {
			return nil, fmt.Errorf("%w: %x", ErrDuplicateMapKey, []byte(rawKey))
		}
		seen[string(rawKey)] = struct{}{}
		pairs = append(pairs, MapPair{
			RawKey:   rawKey,
			RawValue: items[i*2+1],
		})
	}
	return pairs, nil
}

// ArrayItems parses a definite-length CBOR array into raw item bytes.
// Indefinite-length arrays are an error.
func ArrayItems(data []byte) ([]RawMessage, error) {
	count, headerLen, err := headerInfo(data, CborTypeArray)
	if err != nil {
		return nil, err
	}
	return rawItems(data[headerLen:], count)
}

// CanonicalUint checks that the raw bytes encode an unsigned integer in
// shortest form and returns its value
func CanonicalUint(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, errors.New("unexpected end of data")
	}
	if data[0]&CborTypeMask != CborTypeUint {
		return 0, errors.New("not an unsigned integer")
	}
	var val uint64
	if err := DecodeFull(data, &val); err != nil {
		return 0, err
	}
	if !bytes.Equal(AppendUint(nil, CborTypeUint, val), data) {
		return 0, ErrNotCanonicalUint
	}
	return val, nil
}

// IsNull returns true if the raw bytes are the CBOR null value
func IsNull(data []byte) bool {
	return len(data) == 1 && data[0] == CborNull
}
