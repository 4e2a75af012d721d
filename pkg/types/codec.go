package types

import (
	"encoding/json"
	"fmt"
)

// newValue allocates the zero value for a kind so its payload can be
// unmarshaled into a concrete type rather than a generic map.
func newValue(kind Kind) (Value, error) {
	switch kind {
	case KindProject:
		return &Project{}, nil
	case KindVersion:
		return &Version{}, nil
	case KindUser:
		return &User{}, nil
	case KindTeam:
		return &TeamMembers{}, nil
	case KindOrganization:
		return &Organization{}, nil
	case KindFile:
		return &CachedFile{}, nil
	case KindLoaderManifest:
		return &CachedLoaderManifest{}, nil
	case KindMinecraftManifest:
		return &MinecraftManifest{}, nil
	case KindCategories:
		return &Categories{}, nil
	case KindReportTypes:
		return &ReportTypes{}, nil
	case KindLoaders:
		return &Loaders{}, nil
	case KindGameVersions:
		return &GameVersions{}, nil
	case KindDonationPlatforms:
		return &DonationPlatforms{}, nil
	case KindFileHash:
		return &CachedFileHash{}, nil
	case KindFileUpdate:
		return &CachedFileUpdate{}, nil
	default:
		return nil, fmt.Errorf("types: unknown kind %q", kind)
	}
}

// DecodeValue unmarshals a stored JSON payload into the concrete Value
// type for kind. A nil or empty raw means a tombstone, and DecodeValue
// returns (nil, nil) for it.
func DecodeValue(kind Kind, raw []byte) (Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := newValue(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("types: decode %s payload: %w", kind, err)
	}
	return derefValue(v), nil
}

// EncodeValue marshals a Value back to its storage JSON form. A nil
// Value (tombstone) encodes to nil bytes.
func EncodeValue(v Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("types: encode %s payload: %w", v.Kind(), err)
	}
	return raw, nil
}

// derefValue unwraps the pointer newValue allocated so callers get the
// same value kind (by-value) that the Kind()/CacheKey() methods are
// defined on.
func derefValue(v Value) Value {
	switch p := v.(type) {
	case *Project:
		return *p
	case *Version:
		return *p
	case *User:
		return *p
	case *TeamMembers:
		return *p
	case *Organization:
		return *p
	case *CachedFile:
		return *p
	case *CachedLoaderManifest:
		return *p
	case *MinecraftManifest:
		return *p
	case *Categories:
		return *p
	case *ReportTypes:
		return *p
	case *Loaders:
		return *p
	case *GameVersions:
		return *p
	case *DonationPlatforms:
		return *p
	case *CachedFileHash:
		return *p
	case *CachedFileUpdate:
		return *p
	default:
		return v
	}
}
