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
	"fmt"
)

// ContentType enumerates the supported payload media types
type ContentType int

const (
	ContentTypeUnknown ContentType = iota
	ContentTypeJSON
	ContentTypeSchemaJSON
	ContentTypeCBOR
	ContentTypeCDDL
	ContentTypeCSS
	ContentTypeCSSHandlebars
	ContentTypeHTML
	ContentTypeHTMLHandlebars
	ContentTypeMarkdown
	ContentTypeMarkdownHandlebars
	ContentTypePlain
	ContentTypePlainHandlebars
)

var contentTypeNames = map[ContentType]string{
	ContentTypeJSON:               "application/json",
	ContentTypeSchemaJSON:         "application/schema+json",
	ContentTypeCBOR:               "application/cbor",
	ContentTypeCDDL:               "application/cddl",
	ContentTypeCSS:                "text/css; charset=utf-8",
	ContentTypeCSSHandlebars:      "text/css; charset=utf-8; template=handlebars",
	ContentTypeHTML:               "text/html; charset=utf-8",
	ContentTypeHTMLHandlebars:     "text/html; charset=utf-8; template=handlebars",
	ContentTypeMarkdown:           "text/markdown; charset=utf-8",
	ContentTypeMarkdownHandlebars: "text/markdown; charset=utf-8; template=handlebars",
	ContentTypePlain:              "text/plain; charset=utf-8",
	ContentTypePlainHandlebars:    "text/plain; charset=utf-8; template=handlebars",
}

var contentTypesByName = func() map[string]ContentType {
	ret := make(map[string]ContentType, len(contentTypeNames))
	for ct, name := range contentTypeNames {
		ret[name] = ct
	}
	return ret
}()

// CoAP content-format codes accepted for the COSE integer content type
// header (RFC 7252 registry)
var contentTypesByCoap = map[uint64]ContentType{
	50: ContentTypeJSON,
	60: ContentTypeCBOR,
}

func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown content type (%d)", int(c))
}

// IsJSON returns true for media types whose payload is JSON text
func (c ContentType) IsJSON() bool {
	return c == ContentTypeJSON || c == ContentTypeSchemaJSON
}

// ParseContentType resolves the textual media type form
func ParseContentType(s string) (ContentType, error) {
	if ct, ok := contentTypesByName[s]; ok {
		return ct, nil
	}
	return ContentTypeUnknown, fmt.Errorf("unsupported content type: %q", s)
}
