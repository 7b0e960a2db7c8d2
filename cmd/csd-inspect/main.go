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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
	"github.com/blinklabs-io/catalyst-signed-doc/document"
)

func main() {
	// Parse commandline
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagFile := fs.String("file", "", "signed document file to inspect")
	flagLegacyRefs := fs.Bool(
		"legacy-refs",
		false,
		"accept legacy 2-element document references",
	)
	flagDump := fs.Bool(
		"dump",
		false,
		"dump the parsed CBOR structure of the envelope",
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if *flagFile == "" {
		fmt.Println("ERROR: no document file specified")
		fs.PrintDefaults()
		os.Exit(1)
	}
	data, err := os.ReadFile(*flagFile)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	policy := document.RefPolicyFail
	if *flagLegacyRefs {
		policy = document.RefPolicyWarn
	}
	doc, err := document.Decode(data, document.WithRefPolicy(policy))
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	fmt.Print("Catalyst signed document:\n\n")
	fmt.Printf("Type: %s\n", doc.Type())
	fmt.Printf("ID: %s\n", doc.ID())
	fmt.Printf("Ver: %s\n", doc.Ver())
	if ct, ok := doc.ContentType(); ok {
		fmt.Printf("Content type: %s\n", ct)
	}
	if enc, ok := doc.ContentEncoding(); ok {
		fmt.Printf("Content encoding: %s\n", enc)
	}
	if refs := doc.Ref(); len(refs) > 0 {
		fmt.Printf("Ref: %s\n", refs)
	}
	if refs := doc.Template(); len(refs) > 0 {
		fmt.Printf("Template: %s\n", refs)
	}
	if refs := doc.Parameters(); len(refs) > 0 {
		fmt.Printf("Parameters: %s\n", refs)
	}
	if content, err := doc.DecodedContent(); err == nil {
		fmt.Printf("Content size: %d bytes\n", len(content))
	}
	fmt.Printf("Signatures: %d\n", len(doc.Signatures()))
	for _, kid := range doc.Authors() {
		fmt.Printf("  %s\n", kid)
	}

	if *flagDump {
		// Parse the envelope as arbitrary CBOR for display
		var value cbor.Value
		if err := cbor.DecodeFull(doc.Bytes(), &value); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nEnvelope:\n%#v\n", value.Value())
	}

	if doc.Report().IsProblematic() {
		fmt.Printf("\nProblems:\n%s\n", doc.Report())
		os.Exit(1)
	}
}
