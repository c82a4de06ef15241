package domain

import "fmt"

// Kind is the closed set of key formats the generator can produce.
type Kind string

const (
	KindUUID       Kind = "uuid"
	KindAPIKey     Kind = "api"
	KindLicenseKey Kind = "license"
)

// Kinds lists every supported kind in selector order.
var Kinds = []Kind{KindUUID, KindAPIKey, KindLicenseKey}

// DefaultKind is the kind selected when the caller expresses no preference.
const DefaultKind = KindUUID

// ParseKind resolves a selector value into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &UnknownKindError{Value: s}
}

// Label returns a human-readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindUUID:
		return "UUID"
	case KindAPIKey:
		return "API Key"
	case KindLicenseKey:
		return "License Key"
	}
	return fmt.Sprintf("Kind(%q)", string(k))
}

// GeneratedKey is a freshly generated value. It is not persisted until saved.
type GeneratedKey struct {
	Value string
	Kind  Kind
}
