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

// SupportedField enumerates the closed set of protected header fields
type SupportedField int

const (
	FieldType SupportedField = iota
	FieldID
	FieldVer
	FieldContentType
	FieldContentEncoding
	FieldRef
	FieldTemplate
	FieldReply
	FieldSection
	FieldCollaborators
	FieldParameters
	FieldChain
)

// COSE standard integer header labels
const (
	coseLabelAlg         = 1
	coseLabelContentType = 3
	coseLabelKid         = 4
)

// COSE algorithm identifier for EdDSA
const coseAlgEdDSA = -8

// Label returns the wire name of the field. The content-type field is
// carried under the COSE integer label 3 rather than its textual name.
func (f SupportedField) Label() string {
	switch f {
	case FieldType:
		return "type"
	case FieldID:
		return "id"
	case FieldVer:
		return "ver"
	case FieldContentType:
		return "content-type"
	case FieldContentEncoding:
		return "content-encoding"
	case FieldRef:
		return "ref"
	case FieldTemplate:
		return "template"
	case FieldReply:
		return "reply"
	case FieldSection:
		return "section"
	case FieldCollaborators:
		return "collaborators"
	case FieldParameters:
		return "parameters"
	case FieldChain:
		return "chain"
	}
	return "unknown"
}

func (f SupportedField) String() string {
	return f.Label()
}

// fieldByLabel resolves a textual map key to a supported field. The
// content-type field is not resolvable by text: on the wire it only
// appears under COSE label 3.
func fieldByLabel(label string) (SupportedField, bool) {
	switch label {
	case "type":
		return FieldType, true
	case "id":
		return FieldID, true
	case "ver":
		return FieldVer, true
	case "content-encoding":
		return FieldContentEncoding, true
	case "ref":
		return FieldRef, true
	case "template":
		return FieldTemplate, true
	case "reply":
		return FieldReply, true
	case "section":
		return FieldSection, true
	case "collaborators":
		return FieldCollaborators, true
	case "parameters":
		return FieldParameters, true
	case "chain":
		return FieldChain, true
	}
	return 0, false
}

// refFields are the header fields holding document reference lists
var refFields = map[SupportedField]bool{
	FieldRef:        true,
	FieldTemplate:   true,
	FieldReply:      true,
	FieldParameters: true,
}

// singleRefFields are reference fields whose list length must be exactly 1
var singleRefFields = map[SupportedField]bool{
	FieldTemplate:   true,
	FieldReply:      true,
	FieldParameters: true,
}

// Historical unprotected header aliases folded into the parameters field
// on decode
var parametersAliases = map[string]bool{
	"category_id": true,
	"brand_id":    true,
	"campaign_id": true,
}
