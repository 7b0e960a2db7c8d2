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
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
)

var ErrChainShape = errors.New("chain must be a 1- or 2-element array")

// Chain links successive versions of a chained document. Height counts
// links from the chain root; the final link closes the chain against
// further extension. On the wire a chain is [height, ref?] where a
// negative height marks the final link at |height|-1.
type Chain struct {
	Height   uint64
	Final    bool
	Document *DocumentRef
}

func (c Chain) String() string {
	ret := fmt.Sprintf("height: %d", c.Height)
	if c.Final {
		ret += " (final)"
	}
	if c.Document != nil {
		ret += ", ref: [" + c.Document.String() + "]"
	}
	return ret
}

func decodeChain(data []byte, dctx *DecodeContext, context string) (Chain, error) {
	var ret Chain
	items, err := cbor.ArrayItems(data)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrChainShape, err)
	}
	if len(items) < 1 || len(items) > 2 {
		return ret, fmt.Errorf("%w, got %d elements", ErrChainShape, len(items))
	}
	var height int64
	if err := cbor.DecodeFull(items[0], &height); err != nil {
		return ret, fmt.Errorf("chain height: %w", err)
	}
	if height < 0 {
		ret.Final = true
		ret.Height = uint64(-(height + 1))
	} else {
		ret.Height = uint64(height)
	}
	if len(items) == 2 {
		ref, err := decodeRef(items[1], dctx, context)
		if err != nil {
			return ret, err
		}
		ret.Document = &ref
	}
	return ret, nil
}

func (c Chain) MarshalCBOR() ([]byte, error) {
	// The wire form is a signed integer, so heights beyond int64 range
	// cannot be represented
	if c.Height > math.MaxInt64 {
		return nil, fmt.Errorf("chain height %d exceeds encodable range", c.Height)
	}
	height := int64(c.Height)
	if c.Final {
		height = -height - 1
	}
	if c.Document == nil {
		return cbor.Encode([]any{height})
	}
	return cbor.Encode([]any{
		height,
		[]any{c.Document.ID, c.Document.Ver, c.Document.Locator},
	})
}
