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

// Package providers defines the abstract adapters the validation rules
// engine uses to reach documents, registered verifying keys, and timing
// policy. Providers are fallible: a transport failure propagates as an
// error, while a nil result with a nil error means "known absent" and
// participates in validation.
package providers

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// DocumentProvider retrieves signed documents by reference or identity.
// Implementations must be safe for concurrent use: rules invoke them in
// parallel.
type DocumentProvider interface {
	// GetDoc returns the document a reference points to, or nil when it
	// is known to be absent
	GetDoc(ctx context.Context, ref document.DocumentRef) (*document.Document, error)
	// GetLastDoc returns the document with the highest known ver for the
	// given id, or nil
	GetLastDoc(ctx context.Context, id uuid.V7) (*document.Document, error)
	// GetFirstDoc returns the first version (id == ver) for the given
	// id, or nil
	GetFirstDoc(ctx context.Context, id uuid.V7) (*document.Document, error)
	// SearchDocs returns every known document matching the query
	SearchDocs(ctx context.Context, query document.Query) ([]*document.Document, error)
}

// KeyProvider looks up registered verifying keys by key identifier
type KeyProvider interface {
	// RegisteredKey returns the Ed25519 verifying key registered for the
	// given kid, or nil when no registration is known
	RegisteredKey(ctx context.Context, kid catalystid.CatalystID) (ed25519.PublicKey, error)
}

// TimeThresholds supplies the acceptance window for document ID
// timestamps. A false second return disables the corresponding bound.
type TimeThresholds interface {
	PastThreshold() (time.Duration, bool)
	FutureThreshold() (time.Duration, bool)
}

// Provider aggregates everything the rules engine needs
type Provider interface {
	DocumentProvider
	KeyProvider
	TimeThresholds
}
