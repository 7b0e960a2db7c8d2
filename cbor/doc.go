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

// Package cbor provides deterministic CBOR encoding/decoding utilities for
// Catalyst signed documents.
//
// This package wraps github.com/fxamacker/cbor/v2 with the strictness the
// signed document format requires: definite-length containers only, unique
// map keys, shortest-form integers, and exact tag validation.
//
// Embeddable types for struct encoding:
//   - StructAsArray: embed to encode struct fields as a CBOR array instead
//     of a map
//   - DecodeStoreCbor: embed to preserve the original CBOR bytes, which the
//     envelope codec relies on to keep signed bytes stable across re-encode
//
// Utility types:
//   - RawMessage: deferred decoding (like json.RawMessage)
//   - ByteString: bytestrings usable as map keys
//   - Tag, RawTag: CBOR semantic tags
//   - Value: arbitrary CBOR data including types Go maps cannot key on
//
// Strict map access goes through MapPairs, which returns the raw key and
// value bytes of every entry in wire order so callers can both re-decode
// values per key and re-emit the exact bytes they decoded.
package cbor
