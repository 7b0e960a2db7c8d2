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
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

// getEncMode returns a cached EncMode configured for deterministic output,
// initializing it on first use.
func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncModeWithTags(customTagSet)
	})
	return cachedEncMode, cachedEncModeErr
}

func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// AppendUint appends the shortest-form encoding of a uint with the given
// major type to dst
func AppendUint(dst []byte, majorType uint8, val uint64) []byte {
	switch {
	case val <= uint64(CborMaxUintSimple):
		return append(dst, majorType|uint8(val))
	case val <= 0xff:
		return append(dst, majorType|0x18, byte(val))
	case val <= 0xffff:
		return append(dst, majorType|0x19, byte(val>>8), byte(val))
	case val <= 0xffffffff:
		return append(
			dst,
			majorType|0x1a,
			byte(val>>24), byte(val>>16), byte(val>>8), byte(val),
		)
	default:
		return append(
			dst,
			majorType|0x1b,
			byte(val>>56), byte(val>>48), byte(val>>40), byte(val>>32),
			byte(val>>24), byte(val>>16), byte(val>>8), byte(val),
		)
	}
}

// EncodeMapFromPairs emits a definite-length map from raw key/value pairs
// in the order given. Pair bytes are written verbatim, so callers control
// key ordering and round-trip stability.
func EncodeMapFromPairs(pairs []MapPair) []byte {
	ret := AppendUint(nil, CborTypeMap, uint64(len(pairs)))
	for _, pair := range pairs {
		ret = append(ret, pair.RawKey...)
		ret = append(ret, pair.RawValue...)
	}
	return ret
}

// EncodeByteString emits a definite-length byte string header followed by
// the given bytes
func EncodeByteString(data []byte) []byte {
	ret := AppendUint(nil, CborTypeByteString, uint64(len(data)))
	return append(ret, data...)
}
