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

// Package report provides an append-only problem report shared by the
// signed document decoders and validators. Instead of aborting on the
// first failure, every decoder and rule records what it found and keeps
// going, so a caller sees all problems with a document at once.
package report

import (
	"fmt"
	"strings"
	"sync"
)

// Kind classifies a report entry.
type Kind int

const (
	KindMissingField Kind = iota
	KindInvalidValue
	KindInvalidEncoding
	KindUnknownField
	KindFunctionalValidation
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "missing_field"
	case KindInvalidValue:
		return "invalid_value"
	case KindInvalidEncoding:
		return "invalid_encoding"
	case KindUnknownField:
		return "unknown_field"
	case KindFunctionalValidation:
		return "functional_validation"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("unknown_kind(%d)", int(k))
}

// Entry is a single recorded problem. Warning entries are advisory:
// they are kept in the report but do not make the document problematic.
type Entry struct {
	Kind        Kind
	Field       string
	Value       string
	Constraint  string
	Description string
	Context     string
	Warning     bool
}

func (e Entry) String() string {
	var sb strings.Builder
	if e.Warning {
		sb.WriteString("warning: ")
	}
	sb.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&sb, " field=%q", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&sb, " value=%q", e.Value)
	}
	if e.Constraint != "" {
		fmt.Fprintf(&sb, " constraint=%q", e.Constraint)
	}
	if e.Description != "" {
		fmt.Fprintf(&sb, " desc=%q", e.Description)
	}
	if e.Context != "" {
		fmt.Fprintf(&sb, " context=%q", e.Context)
	}
	return sb.String()
}

// Report is a cheap-to-copy handle on a shared append-only entry list.
// All appends are safe for concurrent use, so validation rules running
// in parallel may share one report.
type Report struct {
	inner *reportInner
}

type reportInner struct {
	mutex   sync.Mutex
	context string
	entries []Entry
}

// New creates an empty report. The context string prefixes the context
// of every entry appended through this report.
func New(context string) *Report {
	return &Report{
		inner: &reportInner{
			context: context,
		},
	}
}

func (r *Report) append(entry Entry) {
	if r == nil || r.inner == nil {
		return
	}
	r.inner.mutex.Lock()
	defer r.inner.mutex.Unlock()
	if r.inner.context != "" {
		if entry.Context == "" {
			entry.Context = r.inner.context
		} else {
			entry.Context = r.inner.context + ", " + entry.Context
		}
	}
	r.inner.entries = append(r.inner.entries, entry)
}

// MissingField records a required field that was absent.
func (r *Report) MissingField(field string, context string) {
	r.append(Entry{
		Kind:    KindMissingField,
		Field:   field,
		Context: context,
	})
}

// InvalidValue records a field whose value violates a constraint.
func (r *Report) InvalidValue(field string, value string, constraint string, context string) {
	r.append(Entry{
		Kind:       KindInvalidValue,
		Field:      field,
		Value:      value,
		Constraint: constraint,
		Context:    context,
	})
}

// InvalidEncoding records a field whose raw encoding could not be parsed.
func (r *Report) InvalidEncoding(field string, value string, expected string, context string) {
	r.append(Entry{
		Kind:       KindInvalidEncoding,
		Field:      field,
		Value:      value,
		Constraint: expected,
		Context:    context,
	})
}

// UnknownField records a field that is not part of the supported set.
func (r *Report) UnknownField(field string, value string, context string) {
	r.append(Entry{
		Kind:    KindUnknownField,
		Field:   field,
		Value:   value,
		Context: context,
	})
}

// FunctionalValidation records a semantic rule violation.
func (r *Report) FunctionalValidation(description string, context string) {
	r.append(Entry{
		Kind:        KindFunctionalValidation,
		Description: description,
		Context:     context,
	})
}

// Other records a problem that fits no other kind.
func (r *Report) Other(description string, context string) {
	r.append(Entry{
		Kind:        KindOther,
		Description: description,
		Context:     context,
	})
}

// Warning records an advisory note. Unlike the other append methods it
// never makes the document problematic.
func (r *Report) Warning(description string, context string) {
	r.append(Entry{
		Kind:        KindOther,
		Description: description,
		Context:     context,
		Warning:     true,
	})
}

// IsProblematic returns true if any non-warning entry has been recorded.
func (r *Report) IsProblematic() bool {
	if r == nil || r.inner == nil {
		return false
	}
	r.inner.mutex.Lock()
	defer r.inner.mutex.Unlock()
	for _, entry := range r.inner.entries {
		if !entry.Warning {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any warning entry has been recorded.
func (r *Report) HasWarnings() bool {
	if r == nil || r.inner == nil {
		return false
	}
	r.inner.mutex.Lock()
	defer r.inner.mutex.Unlock()
	for _, entry := range r.inner.entries {
		if entry.Warning {
			return true
		}
	}
	return false
}

// Len returns the number of recorded entries.
func (r *Report) Len() int {
	if r == nil || r.inner == nil {
		return 0
	}
	r.inner.mutex.Lock()
	defer r.inner.mutex.Unlock()
	return len(r.inner.entries)
}

// Entries returns a snapshot copy of the recorded entries.
func (r *Report) Entries() []Entry {
	if r == nil || r.inner == nil {
		return nil
	}
	r.inner.mutex.Lock()
	defer r.inner.mutex.Unlock()
	ret := make([]Entry, len(r.inner.entries))
	copy(ret, r.inner.entries)
	return ret
}

func (r *Report) String() string {
	entries := r.Entries()
	if len(entries) == 0 {
		return "no problems"
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.String())
	}
	return strings.Join(parts, "; ")
}
