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
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/catalyst-signed-doc/catalystid"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	brandType    = mustV4("ebcabeeb-5bc5-4f95-91e8-cab8ca724172")
	campaignType = mustV4("5ef32d5d-f240-462c-a7a4-ba4af221fa23")
	categoryType = mustV4("818938c3-3139-4daa-afe6-974c78488e95")
	templateType = mustV4("0ce8ab38-9258-4fbc-a62e-7faa6e58318f")
	proposalType = mustV4("7808d2ba-d511-40af-84e8-c0d1625fdfdc")
)

func mustV4(s string) uuid.V4 {
	v, err := uuid.ParseV4(s)
	if err != nil {
		panic(err)
	}
	return v
}

const proposalSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string"}
	}
}`

type identity struct {
	kid  catalystid.CatalystID
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newIdentity(t *testing.T, role uint8) identity {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return identity{
		kid: catalystid.CatalystID{
			Network:  "cardano",
			Role0Key: pub,
			Role:     role,
		},
		pub:  pub,
		priv: priv,
	}
}

func (i identity) signer() document.Signer {
	return func(tbs []byte) ([]byte, error) {
		return ed25519.Sign(i.priv, tbs), nil
	}
}

// badSigner produces signatures for the wrong key
func badSigner(t *testing.T) document.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return func(tbs []byte) ([]byte, error) {
		return ed25519.Sign(priv, tbs), nil
	}
}

// docSpec collects everything needed to build a test document
type docSpec struct {
	docType       uuid.V4
	id            uuid.V7
	ver           uuid.V7
	contentType   document.ContentType
	rawContent    string
	template      *document.DocumentRef
	parameters    *document.DocumentRef
	chain         *document.Chain
	collaborators []catalystid.CatalystID
	signer        document.Signer
	signers       []identity
}

func buildDoc(t *testing.T, spec docSpec) *document.Document {
	t.Helper()
	if spec.id.IsZero() {
		spec.id = uuid.NewV7()
	}
	if spec.ver.IsZero() {
		spec.ver = spec.id
	}
	meta := &document.Metadata{}
	require.NoError(t, meta.AddField(document.FieldType, spec.docType))
	require.NoError(t, meta.AddField(document.FieldID, spec.id))
	require.NoError(t, meta.AddField(document.FieldVer, spec.ver))
	require.NoError(
		t,
		meta.AddField(document.FieldContentType, spec.contentType),
	)
	if spec.template != nil {
		require.NoError(t, meta.AddField(
			document.FieldTemplate,
			document.DocumentRefs{*spec.template},
		))
	}
	if spec.parameters != nil {
		require.NoError(t, meta.AddField(
			document.FieldParameters,
			document.DocumentRefs{*spec.parameters},
		))
	}
	if spec.chain != nil {
		require.NoError(t, meta.AddField(document.FieldChain, *spec.chain))
	}
	if len(spec.collaborators) > 0 {
		require.NoError(t, meta.AddField(
			document.FieldCollaborators,
			spec.collaborators,
		))
	}
	content := spec.rawContent
	if content == "" {
		content = "{}"
	}
	builder := document.NewBuilder().
		WithMetadata(meta).
		WithRawContent([]byte(content))
	for _, signer := range spec.signers {
		sign := signer.signer()
		if spec.signer != nil {
			sign = spec.signer
		}
		builder = builder.AddSignature(sign, signer.kid)
	}
	doc, err := builder.Build()
	require.NoError(t, err)
	require.False(t, doc.Report().IsProblematic(), doc.Report().String())
	return doc
}

func selfRef(t *testing.T, doc *document.Document) *document.DocumentRef {
	t.Helper()
	ref, err := doc.SelfRef()
	require.NoError(t, err)
	return &ref
}

// testWorld builds the default parameter hierarchy: a brand, a campaign
// under it, a category under that, and a proposal template scoped to
// the brand, everything signed and registered with the provider.
type testWorld struct {
	provider  *providers.MemProvider
	validator *Validator
	admin     identity
	brand     *document.Document
	campaign  *document.Document
	category  *document.Document
	template  *document.Document
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	validator, err := NewDefaultValidator()
	require.NoError(t, err)
	w := &testWorld{
		provider:  providers.NewMemProvider(),
		validator: validator,
		admin:     newIdentity(t, 0),
	}
	w.provider.AddKey(w.admin.kid, w.admin.pub)
	w.brand = buildDoc(t, docSpec{
		docType:     brandType,
		contentType: document.ContentTypeJSON,
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(w.brand)
	w.campaign = buildDoc(t, docSpec{
		docType:     campaignType,
		contentType: document.ContentTypeJSON,
		parameters:  selfRef(t, w.brand),
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(w.campaign)
	w.category = buildDoc(t, docSpec{
		docType:     categoryType,
		contentType: document.ContentTypeJSON,
		parameters:  selfRef(t, w.campaign),
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(w.category)
	w.template = buildDoc(t, docSpec{
		docType:     templateType,
		contentType: document.ContentTypeSchemaJSON,
		rawContent:  proposalSchema,
		parameters:  selfRef(t, w.brand),
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(w.template)
	return w
}

// proposal builds a proposal against the world's template and category
func (w *testWorld) proposal(t *testing.T, spec docSpec) *document.Document {
	t.Helper()
	spec.docType = proposalType
	spec.contentType = document.ContentTypeJSON
	if spec.rawContent == "" {
		spec.rawContent = `{"title": "a proposal"}`
	}
	if spec.template == nil {
		spec.template = selfRef(t, w.template)
	}
	if spec.parameters == nil {
		spec.parameters = selfRef(t, w.category)
	}
	return buildDoc(t, spec)
}

func (w *testWorld) validate(
	t *testing.T,
	doc *document.Document,
) (bool, string) {
	t.Helper()
	valid, err := w.validator.Validate(t.Context(), doc, w.provider)
	require.NoError(t, err)
	return valid, doc.Report().String()
}

func TestValidateProposal(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	w.provider.AddKey(author.kid, author.pub)
	doc := w.proposal(t, docSpec{signers: []identity{author}})
	valid, rpt := w.validate(t, doc)
	assert.True(t, valid, rpt)
}

func TestValidateUnknownType(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	w.provider.AddKey(author.kid, author.pub)
	doc := buildDoc(t, docSpec{
		docType:     uuid.NewV4(),
		contentType: document.ContentTypeJSON,
		signers:     []identity{author},
	})
	valid, rpt := w.validate(t, doc)
	assert.False(t, valid)
	assert.Contains(t, rpt, "unknown document type")
}

func TestValidateVersionMonotonicity(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	w.provider.AddKey(author.kid, author.pub)

	v1 := w.proposal(t, docSpec{signers: []identity{author}})
	w.provider.AddDoc(v1)
	v2 := w.proposal(t, docSpec{
		id:      v1.ID(),
		ver:     uuid.NewV7(),
		signers: []identity{author},
	})
	valid, rpt := w.validate(t, v2)
	assert.True(t, valid, rpt)
	w.provider.AddDoc(v2)

	// Republishing the latest version is idempotent and allowed
	again := w.proposal(t, docSpec{
		id:      v1.ID(),
		ver:     v2.Ver(),
		signers: []identity{author},
	})
	valid, rpt = w.validate(t, again)
	assert.True(t, valid, rpt)

	// Regressing below the latest known version is not
	regressed := w.proposal(t, docSpec{
		id:      v1.ID(),
		ver:     v1.Ver(),
		signers: []identity{author},
	})
	valid, rpt = w.validate(t, regressed)
	assert.False(t, valid)
	assert.Contains(t, rpt, "must not regress")
}

func TestValidateParameterLinkage(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	w.provider.AddKey(author.kid, author.pub)

	// The template is scoped to the brand; a proposal scoped to the
	// category reaches the brand through the campaign, so the linkage
	// closes
	doc := w.proposal(t, docSpec{signers: []identity{author}})
	valid, rpt := w.validate(t, doc)
	assert.True(t, valid, rpt)

	// A template scoped outside the proposal's parameter closure must
	// be rejected
	otherBrand := buildDoc(t, docSpec{
		docType:     brandType,
		contentType: document.ContentTypeJSON,
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(otherBrand)
	strayTemplate := buildDoc(t, docSpec{
		docType:     templateType,
		contentType: document.ContentTypeSchemaJSON,
		rawContent:  proposalSchema,
		parameters:  selfRef(t, otherBrand),
		signers:     []identity{w.admin},
	})
	w.provider.AddDoc(strayTemplate)
	stray := w.proposal(t, docSpec{
		template: selfRef(t, strayTemplate),
		signers:  []identity{author},
	})
	valid, rpt = w.validate(t, stray)
	assert.False(t, valid)
	assert.Contains(t, rpt, "outside this document's parameters scope")
}

func TestRefRuleUnparameterizedReferrer(t *testing.T) {
	// A document carrying no parameters has an empty closure, so it may
	// not reference a parameterized document
	w := newTestWorld(t)
	doc := buildDoc(t, docSpec{
		docType:     proposalType,
		contentType: document.ContentTypeJSON,
		template:    selfRef(t, w.template),
		signers:     []identity{w.admin},
	})
	rule := TemplateRule([]uuid.V4{templateType}, false)
	valid, err := rule.Check(t.Context(), doc, w.provider)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Contains(
		t,
		doc.Report().String(),
		"outside this document's parameters scope",
	)

	// The same reference is fine from inside the template's scope
	scoped := buildDoc(t, docSpec{
		docType:     proposalType,
		contentType: document.ContentTypeJSON,
		template:    selfRef(t, w.template),
		parameters:  selfRef(t, w.category),
		signers:     []identity{w.admin},
	})
	valid, err = rule.Check(t.Context(), scoped, w.provider)
	require.NoError(t, err)
	assert.True(t, valid, scoped.Report().String())
}

func TestValidateContentSchema(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	w.provider.AddKey(author.kid, author.pub)

	// Content violating the template schema fails
	doc := w.proposal(t, docSpec{
		rawContent: `{"summary": "no title"}`,
		signers:    []identity{author},
	})
	valid, rpt := w.validate(t, doc)
	assert.False(t, valid)
	assert.Contains(t, rpt, "template schema")

	// Content that is not JSON at all fails earlier
	notJSON := w.proposal(t, docSpec{
		rawContent: `not json`,
		signers:    []identity{author},
	})
	valid, _ = w.validate(t, notJSON)
	assert.False(t, valid)
}

func TestValidateSignatures(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)

	// Unregistered signing key
	doc := w.proposal(t, docSpec{signers: []identity{author}})
	valid, rpt := w.validate(t, doc)
	assert.False(t, valid)
	assert.Contains(t, rpt, "Missing public key for")

	// Registered key, but the signature was produced by another one
	w.provider.AddKey(author.kid, author.pub)
	forged := w.proposal(t, docSpec{
		signer:  badSigner(t),
		signers: []identity{author},
	})
	valid, rpt = w.validate(t, forged)
	assert.False(t, valid)
	assert.Contains(t, rpt, "does not verify")

	// Disallowed role
	stranger := newIdentity(t, 1)
	w.provider.AddKey(stranger.kid, stranger.pub)
	wrongRole := w.proposal(t, docSpec{signers: []identity{stranger}})
	valid, rpt = w.validate(t, wrongRole)
	assert.False(t, valid)
	assert.True(
		t,
		strings.Contains(rpt, "role"),
		"expected a role violation, got: %s",
		rpt,
	)
}

func TestValidateOwnership(t *testing.T) {
	w := newTestWorld(t)
	author := newIdentity(t, 0)
	collaborator := newIdentity(t, 0)
	stranger := newIdentity(t, 0)
	for _, i := range []identity{author, collaborator, stranger} {
		w.provider.AddKey(i.kid, i.pub)
	}

	v1 := w.proposal(t, docSpec{
		collaborators: []catalystid.CatalystID{collaborator.kid},
		signers:       []identity{author},
	})
	w.provider.AddDoc(v1)

	// A collaborator named by the first version may publish updates
	update := w.proposal(t, docSpec{
		id:      v1.ID(),
		ver:     uuid.NewV7(),
		signers: []identity{collaborator},
	})
	valid, rpt := w.validate(t, update)
	assert.True(t, valid, rpt)

	// Anyone else may not
	takeover := w.proposal(t, docSpec{
		id:      v1.ID(),
		ver:     uuid.NewV7(),
		signers: []identity{stranger},
	})
	valid, rpt = w.validate(t, takeover)
	assert.False(t, valid)
	assert.Contains(t, rpt, "not an allowed author")
}

func TestValidateRefusesProblematicDocument(t *testing.T) {
	w := newTestWorld(t)
	doc, err := document.Decode([]byte{0x01})
	require.NoError(t, err)
	require.True(t, doc.Report().IsProblematic())
	valid, err := w.validator.Validate(t.Context(), doc, w.provider)
	require.NoError(t, err)
	assert.False(t, valid)
}
