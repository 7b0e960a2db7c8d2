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

package document

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

func TestBuilderJSONMetadata(t *testing.T) {
	pub, priv := testKeyPair(t)
	docType := uuid.NewV4()
	id := uuid.NewV7()
	ref := testRef(t)
	raw := fmt.Sprintf(`{
		"type": %q,
		"id": %q,
		"ver": %q,
		"content-type": "application/json",
		"ref": {"id": %q, "ver": %q},
		"section": "/summary"
	}`, docType, id, id, ref.ID, ref.Ver)

	doc, err := NewBuilder().
		WithJSONMetadata(json.RawMessage(raw)).
		WithJSONContent(map[string]any{"x": 1}).
		AddSignature(testSigner(priv), testKid(pub, 0)).
		Build()
	require.NoError(t, err)
	assert.False(t, doc.Report().IsProblematic(), doc.Report().String())
	assert.True(t, doc.Type().Equal(docType))
	assert.True(t, doc.ID().Equal(id))
	require.Len(t, doc.Ref(), 1)
	assert.True(t, doc.Ref()[0].ID.Equal(ref.ID))
	section, ok := doc.Section()
	assert.True(t, ok)
	assert.Equal(t, "/summary", section)
}

func TestBuilderJSONMetadataUnknownField(t *testing.T) {
	id := uuid.NewV7()
	raw := fmt.Sprintf(`{
		"type": %q,
		"id": %q,
		"ver": %q,
		"bogus": 42
	}`, uuid.NewV4(), id, id)
	pub, priv := testKeyPair(t)
	doc, err := NewBuilder().
		WithJSONMetadata(json.RawMessage(raw)).
		Empty().
		AddSignature(testSigner(priv), testKid(pub, 0)).
		Build()
	require.NoError(t, err)
	assert.True(t, doc.Report().IsProblematic())
}

func TestBuilderJSONContentRequiresJSONContentType(t *testing.T) {
	meta := testMetadata(t, uuid.NewV4())
	pub, priv := testKeyPair(t)
	_, err := NewBuilder().
		WithMetadata(meta).
		WithJSONContent(map[string]any{"x": 1}).
		AddSignature(testSigner(priv), testKid(pub, 0)).
		Build()
	assert.Error(t, err)
}

func TestBuilderRejectsShortSignature(t *testing.T) {
	meta := testMetadata(t, uuid.NewV4())
	pub, _ := testKeyPair(t)
	_, err := NewBuilder().
		WithMetadata(meta).
		Empty().
		AddSignature(func(_ []byte) ([]byte, error) {
			return make([]byte, 63), nil
		}, testKid(pub, 0)).
		Build()
	assert.Error(t, err)
}
