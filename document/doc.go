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

// Package document implements the Catalyst Signed Document envelope: a
// COSE-Sign layered, deterministically encoded CBOR container with a
// closed protected-header vocabulary and multi-signature support.
//
// The envelope is CBOR tag 98 over a four-element array:
//
//	[ protected, unprotected, payload, signatures ]
//
// The protected element is a byte string holding the deterministic CBOR
// encoding of the metadata map. Its exact bytes are part of every
// signature's to-be-signed input, so decoding preserves them verbatim and
// re-encoding emits them unchanged.
//
// Decoding never aborts on semantic problems: every violation is recorded
// in the document's problem report and parsing continues so a caller sees
// everything wrong with a document at once. Only input that is not CBOR
// at all produces a hard error.
package document
