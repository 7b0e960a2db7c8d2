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

// Package catalystid implements the Catalyst RBAC key identifier URI:
//
//	id.catalyst-rbac://[subnet@]network/<base64url(role0_pk)>/<role>/<rotation>[#encrypt]
//
// A CatalystID names a signer by network, Ed25519 role-0 verifying key,
// role index, and key rotation counter. The optional "encrypt" fragment
// distinguishes encryption keys from signing keys.
package catalystid

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/blinklabs-io/catalyst-signed-doc/cbor"
)

const Scheme = "id.catalyst-rbac"

var (
	ErrWrongScheme   = errors.New("unexpected URI scheme")
	ErrMissingHost   = errors.New("missing network in URI")
	ErrBadPath       = errors.New("URI path must be <key>/<role>/<rotation>")
	ErrBadKey        = errors.New("role-0 key must be 32 base64url bytes")
	ErrBadFragment   = errors.New("unexpected URI fragment")
	ErrMissingScheme = errors.New("missing URI scheme")
)

// CatalystID identifies a registered signing or encryption key
type CatalystID struct {
	Network  string
	Subnet   string
	Role0Key ed25519.PublicKey
	Role     uint8
	Rotation uint8
	Encrypt  bool
}

// Parse parses the URI text form
func Parse(uri string) (CatalystID, error) {
	var ret CatalystID
	parsed, err := url.Parse(uri)
	if err != nil {
		return ret, err
	}
	if parsed.Scheme == "" {
		return ret, ErrMissingScheme
	}
	if parsed.Scheme != Scheme {
		return ret, fmt.Errorf(
			"%w: expected %q, got %q",
			ErrWrongScheme,
			Scheme,
			parsed.Scheme,
		)
	}
	if parsed.Host == "" {
		return ret, ErrMissingHost
	}
	ret.Network = parsed.Host
	if parsed.User != nil {
		ret.Subnet = parsed.User.Username()
	}
	pathParts := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
	if len(pathParts) != 3 {
		return ret, fmt.Errorf("%w, got %q", ErrBadPath, parsed.Path)
	}
	keyBytes, err := base64.RawURLEncoding.DecodeString(pathParts[0])
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return ret, fmt.Errorf("%w, got %d bytes", ErrBadKey, len(keyBytes))
	}
	ret.Role0Key = ed25519.PublicKey(keyBytes)
	role, err := strconv.ParseUint(pathParts[1], 10, 8)
	if err != nil {
		return ret, fmt.Errorf("%w: bad role index: %w", ErrBadPath, err)
	}
	ret.Role = uint8(role)
	rotation, err := strconv.ParseUint(pathParts[2], 10, 8)
	if err != nil {
		return ret, fmt.Errorf("%w: bad rotation: %w", ErrBadPath, err)
	}
	ret.Rotation = uint8(rotation)
	switch parsed.Fragment {
	case "":
		// signing key
	case "encrypt":
		ret.Encrypt = true
	default:
		return ret, fmt.Errorf("%w: %q", ErrBadFragment, parsed.Fragment)
	}
	return ret, nil
}

// String returns the full URI text form
func (c CatalystID) String() string {
	return Scheme + "://" + c.AsID()
}

// AsID returns the compact form without the scheme
func (c CatalystID) AsID() string {
	var sb strings.Builder
	if c.Subnet != "" {
		sb.WriteString(c.Subnet)
		sb.WriteString("@")
	}
	sb.WriteString(c.Network)
	sb.WriteString("/")
	sb.WriteString(base64.RawURLEncoding.EncodeToString(c.Role0Key))
	sb.WriteString("/")
	sb.WriteString(strconv.FormatUint(uint64(c.Role), 10))
	sb.WriteString("/")
	sb.WriteString(strconv.FormatUint(uint64(c.Rotation), 10))
	if c.Encrypt {
		sb.WriteString("#encrypt")
	}
	return sb.String()
}

// Short returns the compact form without role and rotation when both are
// at their defaults
func (c CatalystID) Short() string {
	if c.Role != 0 || c.Rotation != 0 || c.Encrypt {
		return c.AsID()
	}
	var sb strings.Builder
	if c.Subnet != "" {
		sb.WriteString(c.Subnet)
		sb.WriteString("@")
	}
	sb.WriteString(c.Network)
	sb.WriteString("/")
	sb.WriteString(base64.RawURLEncoding.EncodeToString(c.Role0Key))
	return sb.String()
}

// Equal compares key identity: network, subnet, role-0 key, role,
// rotation, and key kind
func (c CatalystID) Equal(other CatalystID) bool {
	return c.Network == other.Network &&
		c.Subnet == other.Subnet &&
		c.Role0Key.Equal(other.Role0Key) &&
		c.Role == other.Role &&
		c.Rotation == other.Rotation &&
		c.Encrypt == other.Encrypt
}

// SameKeyHolder compares the role-0 key only, ignoring role, rotation,
// and key kind. Two IDs from the same holder name the same registration.
func (c CatalystID) SameKeyHolder(other CatalystID) bool {
	return c.Network == other.Network &&
		c.Subnet == other.Subnet &&
		c.Role0Key.Equal(other.Role0Key)
}

// IsZero returns true for the zero value
func (c CatalystID) IsZero() bool {
	return c.Network == "" && len(c.Role0Key) == 0
}

func (c *CatalystID) UnmarshalCBOR(data []byte) error {
	var tmpUri string
	if err := cbor.DecodeFull(data, &tmpUri); err != nil {
		return err
	}
	tmpId, err := Parse(tmpUri)
	if err != nil {
		return err
	}
	*c = tmpId
	return nil
}

func (c CatalystID) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(c.String())
}
