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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
)

func TestLocatorFromContent(t *testing.T) {
	content := []byte("some document content")
	locator1, err := LocatorFromContent(content)
	require.NoError(t, err)
	locator2, err := LocatorFromContent(content)
	require.NoError(t, err)
	// Content addressing is deterministic
	assert.True(t, locator1.Equal(locator2))

	other, err := LocatorFromContent([]byte("different content"))
	require.NoError(t, err)
	assert.False(t, locator1.Equal(other))
}

func TestLocatorCborRoundTrip(t *testing.T) {
	locator, err := LocatorFromContent([]byte("content"))
	require.NoError(t, err)
	data, err := cbor.Encode(locator)
	require.NoError(t, err)

	var decoded DocumentLocator
	require.NoError(t, cbor.DecodeFull(data, &decoded))
	assert.True(t, decoded.Equal(locator))
}

func TestLocatorEmptyPlaceholder(t *testing.T) {
	var locator DocumentLocator
	assert.True(t, locator.IsZero())
	data, err := cbor.Encode(locator)
	require.NoError(t, err)

	var decoded DocumentLocator
	require.NoError(t, cbor.DecodeFull(data, &decoded))
	assert.True(t, decoded.IsZero())
}
