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
)

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	assert.Len(t, table, 7)
	names := map[string]bool{}
	for _, rules := range table {
		require.NotNil(t, rules)
		names[rules.Name()] = true
	}
	for _, want := range []string{
		"Brand Parameters",
		"Campaign Parameters",
		"Category Parameters",
		"Proposal Form Template",
		"Comment Form Template",
		"Proposal",
		"Proposal Comment",
	} {
		assert.True(t, names[want], "missing document type %q", want)
	}
}

func TestLoadSpecRejectsInconsistencies(t *testing.T) {
	testCases := []struct {
		name string
		spec string
	}{
		{
			name: "BadTypeUuid",
			spec: `{"docs":{"A":{"type":"not-a-uuid",
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "DuplicateTypeUuid",
			spec: `{"docs":{
				"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
					"signers":{"roles":[0]},"payload":{"nil":true}},
				"B":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
					"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "ExcludedFieldWithTypes",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"metadata":{"ref":{"required":"excluded","type":["A"]}},
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "MultipleOnSingleRefField",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"metadata":{"template":{"required":"yes","type":["A"],"multiple":true}},
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "UndefinedReferencedType",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"metadata":{"ref":{"required":"yes","type":["Nonexistent"]}},
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "UnknownMetadataField",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"metadata":{"bogus":{"required":"yes"}},
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "UnknownRequiredMode",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"metadata":{"ref":{"required":"maybe"}},
				"signers":{"roles":[0]},"payload":{"nil":true}}}}`,
		},
		{
			name: "NoSignerRoles",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"payload":{"nil":true}}}}`,
		},
		{
			name: "NilPayloadWithSchema",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"signers":{"roles":[0]},
				"payload":{"nil":true,"schema":"template"}}}}`,
		},
		{
			name: "UnknownSchemaReference",
			spec: `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
				"signers":{"roles":[0]},
				"payload":{"schema":"elsewhere"}}}}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadSpec([]byte(tc.spec))
			assert.Error(t, err)
		})
	}
}

func TestLoadSpecInlineSchema(t *testing.T) {
	spec := `{"docs":{"A":{"type":"ebcabeeb-5bc5-4f95-91e8-cab8ca724172",
		"headers":{"content type":{"value":["application/json"]}},
		"signers":{"roles":[0]},
		"payload":{"schema":{"type":"object"}}}}}`
	table, err := LoadSpec([]byte(spec))
	require.NoError(t, err)
	assert.Len(t, table, 1)
}
