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

package providers

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// MemProvider is an in-memory Provider implementation for tests and
// embedders that hold their document set locally
type MemProvider struct {
	mutex           sync.RWMutex
	docs            map[string]*document.Document
	keys            map[string]ed25519.PublicKey
	pastThreshold   *time.Duration
	futureThreshold *time.Duration
}

// NewMemProvider creates an empty in-memory provider
func NewMemProvider() *MemProvider {
	return &MemProvider{
		docs: map[string]*document.Document{},
		keys: map[string]ed25519.PublicKey{},
	}
}

func docKey(id uuid.V7, ver uuid.V7) string {
	return id.String() + "/" + ver.String()
}

// AddDoc stores a document under its (id, ver) identity
func (p *MemProvider) AddDoc(doc *document.Document) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.docs[docKey(doc.ID(), doc.Ver())] = doc
}

// RemoveDoc drops a stored document
func (p *MemProvider) RemoveDoc(id uuid.V7, ver uuid.V7) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.docs, docKey(id, ver))
}

// AddKey registers a verifying key for a key identifier
func (p *MemProvider) AddKey(kid catalystid.CatalystID, key ed25519.PublicKey) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.keys[kid.String()] = key
}

// RemoveKey drops a registered key
func (p *MemProvider) RemoveKey(kid catalystid.CatalystID) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.keys, kid.String())
}

// SetThresholds configures the timestamp acceptance window. A nil value
// disables the corresponding bound.
func (p *MemProvider) SetThresholds(past, future *time.Duration) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.pastThreshold = past
	p.futureThreshold = future
}

func (p *MemProvider) GetDoc(
	_ context.Context,
	ref document.DocumentRef,
) (*document.Document, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.docs[docKey(ref.ID, ref.Ver)], nil
}

func (p *MemProvider) GetLastDoc(
	_ context.Context,
	id uuid.V7,
) (*document.Document, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	var ret *document.Document
	for _, doc := range p.docs {
		if !doc.ID().Equal(id) {
			continue
		}
		if ret == nil || doc.Ver().After(ret.Ver()) {
			ret = doc
		}
	}
	return ret, nil
}

func (p *MemProvider) GetFirstDoc(
	_ context.Context,
	id uuid.V7,
) (*document.Document, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.docs[docKey(id, id)], nil
}

func (p *MemProvider) SearchDocs(
	_ context.Context,
	query document.Query,
) ([]*document.Document, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	var ret []*document.Document
	for _, doc := range p.docs {
		if query.Matches(doc) {
			ret = append(ret, doc)
		}
	}
	return ret, nil
}

func (p *MemProvider) RegisteredKey(
	_ context.Context,
	kid catalystid.CatalystID,
) (ed25519.PublicKey, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.keys[kid.String()], nil
}

func (p *MemProvider) PastThreshold() (time.Duration, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.pastThreshold == nil {
		return 0, false
	}
	return *p.pastThreshold, true
}

func (p *MemProvider) FutureThreshold() (time.Duration, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.futureThreshold == nil {
		return 0, false
	}
	return *p.futureThreshold, true
}
