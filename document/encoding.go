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
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// ContentEncoding enumerates the supported payload compression algorithms.
// An absent content-encoding header means the payload is raw.
type ContentEncoding int

const (
	ContentEncodingRaw ContentEncoding = iota
	ContentEncodingBrotli
	ContentEncodingZstd
)

func (e ContentEncoding) String() string {
	switch e {
	case ContentEncodingRaw:
		return "raw"
	case ContentEncodingBrotli:
		return "br"
	case ContentEncodingZstd:
		return "zstd"
	}
	return fmt.Sprintf("unknown content encoding (%d)", int(e))
}

// ParseContentEncoding resolves the textual header form
func ParseContentEncoding(s string) (ContentEncoding, error) {
	switch s {
	case "br":
		return ContentEncodingBrotli, nil
	case "zstd":
		return ContentEncodingZstd, nil
	}
	return ContentEncodingRaw, fmt.Errorf("unsupported content encoding: %q", s)
}

// maxDecodedContentSize bounds decompressed payload size to keep malformed
// or hostile input from exhausting memory
const maxDecodedContentSize = 64 << 20

// CompressContent encodes raw content bytes with the given algorithm
func CompressContent(data []byte, encoding ContentEncoding) ([]byte, error) {
	switch encoding {
	case ContentEncodingRaw:
		return data, nil
	case ContentEncodingBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ContentEncodingZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	}
	return nil, fmt.Errorf("unsupported content encoding: %s", encoding)
}

// DecompressContent decodes payload bytes with the given algorithm
func DecompressContent(data []byte, encoding ContentEncoding) ([]byte, error) {
	switch encoding {
	case ContentEncodingRaw:
		return data, nil
	case ContentEncodingBrotli:
		r := brotli.NewReader(bytes.NewReader(data))
		ret, err := io.ReadAll(io.LimitReader(r, maxDecodedContentSize+1))
		if err != nil {
			return nil, fmt.Errorf("brotli decode: %w", err)
		}
		if len(ret) > maxDecodedContentSize {
			return nil, fmt.Errorf("decoded content exceeds %d bytes", maxDecodedContentSize)
		}
		return ret, nil
	case ContentEncodingZstd:
		dec, err := zstd.NewReader(
			nil,
			zstd.WithDecoderMaxMemory(maxDecodedContentSize),
		)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		ret, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported content encoding: %s", encoding)
}
