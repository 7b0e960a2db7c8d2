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
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/blinklabs-io/catalyst-signed-doc/document"
	"github.com/blinklabs-io/catalyst-signed-doc/providers"
	"github.com/blinklabs-io/catalyst-signed-doc/uuid"
)

// Rule is a single validation predicate. A return of (false, nil) means
// the document violates the rule; the rule is expected to have recorded
// the violation in the document's problem report. A non-nil error means
// the rule could not decide, typically because a provider call failed,
// and carries no verdict.
type Rule interface {
	Check(
		ctx context.Context,
		doc *document.Document,
		provider providers.Provider,
	) (bool, error)
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error)

func (f RuleFunc) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	return f(ctx, doc, provider)
}

// Rules is the bundle of rules for one document type. All rules run
// concurrently against the same document; the bundle passes only if
// every rule passes. The first provider error cancels the remaining
// rules and is returned as-is.
type Rules struct {
	name  string
	rules []Rule
}

// NewRules builds a named bundle from the given rules.
func NewRules(name string, rules ...Rule) *Rules {
	return &Rules{name: name, rules: rules}
}

// Name returns the human-readable document type name the bundle was
// registered under.
func (r *Rules) Name() string {
	return r.name
}

// Check runs every rule concurrently and ANDs their verdicts. Rules
// append to the shared problem report as they go, so a failing bundle
// leaves the reasons in doc.Report(). On provider error the remaining
// rules are cancelled and the report may be partially populated.
func (r *Rules) Check(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	var valid atomic.Bool
	valid.Store(true)
	g, gctx := errgroup.WithContext(ctx)
	for _, rule := range r.rules {
		g.Go(func() error {
			ok, err := rule.Check(gctx, doc, provider)
			if err != nil {
				return err
			}
			if !ok {
				valid.Store(false)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return valid.Load(), nil
}

// Validator dispatches documents to the rule bundle registered for
// their declared type.
type Validator struct {
	table map[uuid.V4]*Rules
}

// NewValidator builds a validator over the given type table.
func NewValidator(table map[uuid.V4]*Rules) *Validator {
	return &Validator{table: table}
}

// Rules returns the bundle registered for the given document type, or
// nil when the type is unknown.
func (v *Validator) Rules(docType uuid.V4) *Rules {
	return v.table[docType]
}

// Validate checks the document against the rules for its declared type.
// A document whose report is already problematic is refused without
// running any rules, since its decoded view cannot be trusted. An
// unknown document type is recorded in the report and fails validation.
func (v *Validator) Validate(
	ctx context.Context,
	doc *document.Document,
	provider providers.Provider,
) (bool, error) {
	rpt := doc.Report()
	if rpt.IsProblematic() {
		return false, nil
	}
	docType := doc.Type()
	if docType.IsZero() {
		rpt.MissingField("type", "document")
		return false, nil
	}
	rules, ok := v.table[docType]
	if !ok {
		rpt.FunctionalValidation(
			fmt.Sprintf("unknown document type %s", docType),
			"document",
		)
		return false, nil
	}
	return rules.Check(ctx, doc, provider)
}
