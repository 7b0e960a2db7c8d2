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
	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// Query is a union-of-selectors document filter: a document matches when
// any set selector matches. An empty query matches nothing.
type Query struct {
	ID           *uuid.V7
	Ver          *uuid.V7
	Type         *uuid.V4
	Ref          *DocumentRef
	Template     *DocumentRef
	Reply        *DocumentRef
	Parameters   *DocumentRef
	Collaborator *catalystid.CatalystID
	Author       *catalystid.CatalystID
}

// Matches evaluates the query against a document. Selectors combine with
// OR: the first selector that matches decides.
func (q Query) Matches(doc *Document) bool {
	if doc == nil {
		return false
	}
	if q.ID != nil && doc.ID().Equal(*q.ID) {
		return true
	}
	if q.Ver != nil && doc.Ver().Equal(*q.Ver) {
		return true
	}
	if q.Type != nil && doc.Type().Equal(*q.Type) {
		return true
	}
	if q.Ref != nil && doc.Ref().Contains(*q.Ref) {
		return true
	}
	if q.Template != nil && doc.Template().Contains(*q.Template) {
		return true
	}
	if q.Reply != nil && doc.Reply().Contains(*q.Reply) {
		return true
	}
	if q.Parameters != nil && doc.Parameters().Contains(*q.Parameters) {
		return true
	}
	if q.Collaborator != nil {
		for _, collaborator := range doc.Collaborators() {
			if collaborator.SameKeyHolder(*q.Collaborator) {
				return true
			}
		}
	}
	if q.Author != nil {
		for _, author := range doc.Authors() {
			if author.SameKeyHolder(*q.Author) {
				return true
			}
		}
	}
	return false
}
