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

// Package validator implements the rules engine for Catalyst signed
// documents. Every document type maps to an ordered bundle of rules;
// each rule is a predicate over (document, provider) that records its
// findings in the document's problem report. Rules run concurrently and
// the bundle result is their logical AND.
//
// The caller distinguishes "invalid document" from "could not decide" by
// the return shape: (false, nil) means the document failed validation
// and the report says why; a non-nil error means a provider failed and
// no verdict was reached.
//
// Rule bundles are synthesised from a declarative document-types
// specification, loaded once at startup.
package validator
