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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/catalyst-signed-doc/report"
)

func TestChainHeightOutOfRange(t *testing.T) {
	testCases := []struct {
		name  string
		chain Chain
	}{
		{name: "NonFinal", chain: Chain{Height: math.MaxInt64 + 1}},
		{name: "Final", chain: Chain{Height: math.MaxUint64, Final: true}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.chain.MarshalCBOR()
			assert.ErrorContains(t, err, "exceeds encodable range")
		})
	}
}

func TestChainHeightBoundary(t *testing.T) {
	// The largest encodable height survives a round trip, final links
	// included
	chain := Chain{Height: math.MaxInt64, Final: true}
	data, err := chain.MarshalCBOR()
	require.NoError(t, err)

	rpt := report.New("test")
	dctx := &DecodeContext{Report: rpt}
	decoded, err := decodeChain(data, dctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, chain.Height, decoded.Height)
	assert.True(t, decoded.Final)
	assert.Nil(t, decoded.Document)
}
