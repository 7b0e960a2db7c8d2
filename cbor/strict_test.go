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

package cbor_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
)

func TestMapPairs(t *testing.T) {
	testDefs := []struct {
		name          string
		cborHex       string
		expectedPairs int
		expectedErr   error
	}{
		{
			name:          "empty map",
			cborHex:       "a0",
			expectedPairs: 0,
		},
		{
			name:          "two entries",
			cborHex:       "a2626964016376657202",
			expectedPairs: 2,
		},
		{
			name:        "indefinite length map",
			cborHex:     "bf62696401ff",
			expectedErr: cbor.ErrIndefiniteLength,
		},
		{
			name:        "duplicate keys",
			cborHex:     "a26269640162696402",
			expectedErr: cbor.ErrDuplicateMapKey,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			data, err := hex.DecodeString(testDef.cborHex)
			if err != nil {
				t.Fatalf("bad test data: %s", err)
			}
			pairs, err := cbor.MapPairs(data)
			if testDef.expectedErr != nil {
				if !errors.Is(err, testDef.expectedErr) {
					t.Fatalf("expected error %q, got %v", testDef.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if len(pairs) != testDef.expectedPairs {
				t.Fatalf(
					"expected %d pairs, got %d",
					testDef.expectedPairs,
					len(pairs),
				)
			}
		})
	}
}

func TestMapPairsPreservesRawBytes(t *testing.T) {
	data, _ := hex.DecodeString("a2626964016376657202")
	pairs, err := cbor.MapPairs(data)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	reencoded := cbor.EncodeMapFromPairs(pairs)
	if hex.EncodeToString(reencoded) != hex.EncodeToString(data) {
		t.Fatalf(
			"round-trip mismatch\n  got: %x\n  wanted: %x",
			reencoded,
			data,
		)
	}
}

func TestArrayItems(t *testing.T) {
	testDefs := []struct {
		name          string
		cborHex       string
		expectedItems int
		expectedErr   error
	}{
		{
			name:          "simple list",
			cborHex:       "83010203",
			expectedItems: 3,
		},
		{
			name:          "empty list",
			cborHex:       "80",
			expectedItems: 0,
		},
		{
			name:        "indefinite length list",
			cborHex:     "9f010203ff",
			expectedErr: cbor.ErrIndefiniteLength,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			data, err := hex.DecodeString(testDef.cborHex)
			if err != nil {
				t.Fatalf("bad test data: %s", err)
			}
			items, err := cbor.ArrayItems(data)
			if testDef.expectedErr != nil {
				if !errors.Is(err, testDef.expectedErr) {
					t.Fatalf("expected error %q, got %v", testDef.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if len(items) != testDef.expectedItems {
				t.Fatalf(
					"expected %d items, got %d",
					testDef.expectedItems,
					len(items),
				)
			}
		})
	}
}

func TestCanonicalUint(t *testing.T) {
	testDefs := []struct {
		cborHex     string
		expected    uint64
		expectedErr error
	}{
		{cborHex: "00", expected: 0},
		{cborHex: "17", expected: 23},
		{cborHex: "1818", expected: 24},
		// 23 encoded with an unnecessary length byte
		{cborHex: "1817", expectedErr: cbor.ErrNotCanonicalUint},
		// 255 encoded as 2-byte length
		{cborHex: "1900ff", expectedErr: cbor.ErrNotCanonicalUint},
	}
	for _, testDef := range testDefs {
		data, err := hex.DecodeString(testDef.cborHex)
		if err != nil {
			t.Fatalf("bad test data: %s", err)
		}
		val, err := cbor.CanonicalUint(data)
		if testDef.expectedErr != nil {
			if !errors.Is(err, testDef.expectedErr) {
				t.Fatalf(
					"expected error %q for %s, got %v",
					testDef.expectedErr,
					testDef.cborHex,
					err,
				)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if val != testDef.expected {
			t.Fatalf("expected %d, got %d", testDef.expected, val)
		}
	}
}

func TestIsNull(t *testing.T) {
	if !cbor.IsNull([]byte{0xf6}) {
		t.Fatal("expected null")
	}
	if cbor.IsNull([]byte{0xf7}) {
		t.Fatal("undefined is not null")
	}
}
