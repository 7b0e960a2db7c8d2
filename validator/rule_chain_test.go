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

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// chainRoot publishes a height-zero chain root scoped to the world's
// category
func chainRoot(t *testing.T, w *testWorld, final bool) *document.Document {
	t.Helper()
	root := buildDoc(t, docSpec{
		docType:     proposalType,
		contentType: document.ContentTypeJSON,
		parameters:  selfRef(t, w.category),
		chain:       &document.Chain{Height: 0, Final: final},
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(root)
	return root
}

func TestChainRule(t *testing.T) {
	w := newTestWorld(t)
	rule := ChainRule{}

	t.Run("ValidSuccessor", func(t *testing.T) {
		root := chainRoot(t, w, false)
		next := buildDoc(t, docSpec{
			docType:     proposalType,
			id:          root.ID(),
			ver:         uuid.NewV7(),
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 1, Document: selfRef(t, root)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), next, w.provider)
		require.NoError(t, err)
		assert.True(t, valid, next.Report().String())
	})

	t.Run("Root", func(t *testing.T) {
		root := chainRoot(t, w, false)
		valid, err := rule.Check(t.Context(), root, w.provider)
		require.NoError(t, err)
		assert.True(t, valid, root.Report().String())
	})

	t.Run("RootWithPredecessor", func(t *testing.T) {
		other := chainRoot(t, w, false)
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 0, Document: selfRef(t, other)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(
			t,
			doc.Report().String(),
			"chain root must not reference a predecessor",
		)
	})

	t.Run("MissingPredecessorRef", func(t *testing.T) {
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 1},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(
			t,
			doc.Report().String(),
			"non-root link must reference its predecessor",
		)
	})

	t.Run("PredecessorNotFound", func(t *testing.T) {
		// Built but never registered with the provider
		unpublished := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 0},
			signers:     []identity{w.admin},
		})
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			id:          unpublished.ID(),
			ver:         uuid.NewV7(),
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain: &document.Chain{
				Height:   1,
				Document: selfRef(t, unpublished),
			},
			signers: []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(t, doc.Report().String(), "not found")
	})

	t.Run("PredecessorOfOtherDocument", func(t *testing.T) {
		other := chainRoot(t, w, false)
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 1, Document: selfRef(t, other)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(t, doc.Report().String(), "belongs to document")
	})

	t.Run("SkippedHeight", func(t *testing.T) {
		root := chainRoot(t, w, false)
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			id:          root.ID(),
			ver:         uuid.NewV7(),
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 2, Document: selfRef(t, root)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(
			t,
			doc.Report().String(),
			"exactly one above predecessor height",
		)
	})

	t.Run("FinalPredecessor", func(t *testing.T) {
		root := chainRoot(t, w, true)
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			id:          root.ID(),
			ver:         uuid.NewV7(),
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			chain:       &document.Chain{Height: 1, Document: selfRef(t, root)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(t, doc.Report().String(), "marked final")
	})

	t.Run("PredecessorOutsideParameterScope", func(t *testing.T) {
		// The root sits under the category; a successor without any
		// parameters of its own cannot reach it
		root := chainRoot(t, w, false)
		doc := buildDoc(t, docSpec{
			docType:     proposalType,
			id:          root.ID(),
			ver:         uuid.NewV7(),
			contentType: document.ContentTypeJSON,
			chain:       &document.Chain{Height: 1, Document: selfRef(t, root)},
			signers:     []identity{w.admin},
		})
		valid, err := rule.Check(t.Context(), doc, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(
			t,
			doc.Report().String(),
			"outside this document's parameters scope",
		)
	})

	t.Run("Excluded", func(t *testing.T) {
		excluded := ChainRule{Excluded: true}
		chained := chainRoot(t, w, false)
		valid, err := excluded.Check(t.Context(), chained, w.provider)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Contains(
			t,
			chained.Report().String(),
			"must not be present for this document type",
		)

		plain := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			signers:     []identity{w.admin},
		})
		valid, err = excluded.Check(t.Context(), plain, w.provider)
		require.NoError(t, err)
		assert.True(t, valid, plain.Report().String())
	})

	t.Run("OptionalAbsent", func(t *testing.T) {
		optional := ChainRule{Optional: true}
		plain := buildDoc(t, docSpec{
			docType:     proposalType,
			contentType: document.ContentTypeJSON,
			parameters:  selfRef(t, w.category),
			signers:     []identity{w.admin},
		})
		valid, err := optional.Check(t.Context(), plain, w.provider)
		require.NoError(t, err)
		assert.True(t, valid, plain.Report().String())
	})
}
