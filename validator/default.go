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
	_ "embed"
	"sync"

	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

//go:embed signed_doc.json
var defaultSpecJSON []byte

var defaultTable = sync.OnceValues(func() (map[uuid.V4]*Rules, error) {
	return LoadSpec(defaultSpecJSON)
})

// DefaultTable returns the rule table for the built-in Catalyst
// document types, loaded once from the embedded specification.
func DefaultTable() (map[uuid.V4]*Rules, error) {
	return defaultTable()
}

// NewDefaultValidator builds a validator over the built-in document
// types.
func NewDefaultValidator() (*Validator, error) {
	table, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewValidator(table), nil
}
