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
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

func buildTestDoc(
	t *testing.T,
	docType uuid.V4,
	id uuid.V7,
	ver uuid.V7,
) *document.Document {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	kid := catalystid.CatalystID{Network: "cardano", Role0Key: pub}
	meta := &document.Metadata{}
	require.NoError(t, meta.AddField(document.FieldType, docType))
	require.NoError(t, meta.AddField(document.FieldID, id))
	require.NoError(t, meta.AddField(document.FieldVer, ver))
	doc, err := document.NewBuilder().
		WithMetadata(meta).
		Empty().
		AddSignature(func(tbs []byte) ([]byte, error) {
			return ed25519.Sign(priv, tbs), nil
		}, kid).
		Build()
	require.NoError(t, err)
	return doc
}

func TestMemProviderDocs(t *testing.T) {
	p := NewMemProvider()
	docType := uuid.NewV4()
	id := uuid.NewV7()
	v1 := buildTestDoc(t, docType, id, id)
	v2 := buildTestDoc(t, docType, id, uuid.NewV7())
	p.AddDoc(v2)
	p.AddDoc(v1)

	ctx := t.Context()
	got, err := p.GetDoc(ctx, document.DocumentRef{ID: id, Ver: v2.Ver()})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Ver().Equal(v2.Ver()))

	// Unknown documents are a nil result, not an error
	got, err = p.GetDoc(
		ctx,
		document.DocumentRef{ID: uuid.NewV7(), Ver: uuid.NewV7()},
	)
	require.NoError(t, err)
	assert.Nil(t, got)

	first, err := p.GetFirstDoc(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Ver().Equal(id))

	last, err := p.GetLastDoc(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Ver().Equal(v2.Ver()))

	results, err := p.SearchDocs(ctx, document.Query{ID: &id})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	p.RemoveDoc(id, v2.Ver())
	last, err = p.GetLastDoc(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Ver().Equal(id))
}

func TestMemProviderKeys(t *testing.T) {
	p := NewMemProvider()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	kid := catalystid.CatalystID{Network: "cardano", Role0Key: pub}

	got, err := p.RegisteredKey(t.Context(), kid)
	require.NoError(t, err)
	assert.Nil(t, got)

	p.AddKey(kid, pub)
	got, err = p.RegisteredKey(t.Context(), kid)
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	p.RemoveKey(kid)
	got, err = p.RegisteredKey(t.Context(), kid)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemProviderThresholds(t *testing.T) {
	p := NewMemProvider()
	_, ok := p.PastThreshold()
	assert.False(t, ok)
	_, ok = p.FutureThreshold()
	assert.False(t, ok)

	past := time.Hour
	future := time.Minute
	p.SetThresholds(&past, &future)
	got, ok := p.PastThreshold()
	assert.True(t, ok)
	assert.Equal(t, past, got)
	got, ok = p.FutureThreshold()
	assert.True(t, ok)
	assert.Equal(t, future, got)
}
