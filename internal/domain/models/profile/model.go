// Package profile provides the nostr profile model: a public key plus the
// kind-0 metadata published for it.
package profile

import (
	"encoding/json"
	"fmt"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/metadata"
)

// Name is the entity and table name.
const Name = relations.ProfileTable

// List kinds answered besides "all".
const (
	ListOnRelay  = "on_relay"
	ListOffRelay = "off_relay"
)

// Profile is a nostr identity.
type Profile struct {
	entity.Base

	PublicKey string `db:"public_key" json:"public_key" field:"required,immutable,unique" sql:"CHAR(64)" validate:"len=64,hexadecimal"`

	Name        *string `db:"name" json:"name,omitempty"`
	DisplayName *string `db:"display_name" json:"display_name,omitempty"`
	About       *string `db:"about" json:"about,omitempty"`
	Website     *string `db:"website" json:"website,omitempty" validate:"url"`
	Picture     *string `db:"picture" json:"picture,omitempty" validate:"url"`
	Banner      *string `db:"banner" json:"banner,omitempty" validate:"url"`
	Nip05       *string `db:"nip05" json:"nip05,omitempty" validate:"email"`
	Lud06       *string `db:"lud06" json:"lud06,omitempty"`
	Lud16       *string `db:"lud16" json:"lud16,omitempty"`
}

// Definition is the registered contract of Profile.
var Definition = metadata.Inspect(Profile{}, Name).
	WithSelectors(entity.ColumnID, "public_key").
	WithLists(relations.Lists(relations.ProfileRelay, Name, ListOnRelay, ListOffRelay, entity.ColumnID)...).
	WithForm("public_key", metadata.Form{Label: "Public key", Validation: metadata.RegexHex64, Charset: metadata.RegexHexCh, Hidden: true}).
	WithForm("name", metadata.Form{Label: "Name", Validation: metadata.RegexProfile, Charset: metadata.RegexProfileCh}).
	WithForm("website", metadata.Form{Label: "Website", Placeholder: "https://", Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh}).
	WithForm("picture", metadata.Form{Label: "Picture", Placeholder: "https://", Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh}).
	WithForm("banner", metadata.Form{Label: "Banner", Placeholder: "https://", Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh}).
	WithForm("nip05", metadata.Form{Label: "NIP-05", Placeholder: "name@domain", Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh})

// Parse interprets rec as a Profile.
func Parse(rec any) (Profile, bool) {
	return contract.Parse[Profile](Definition, rec)
}

// ParseList parses a result set, dropping rows that are not profiles.
func ParseList(v any) ([]Profile, bool) {
	return contract.ParseList[Profile](Definition, v)
}

// FromMetadata builds creation input from the content of a kind-0
// metadata event. Unknown keys in content are ignored; values keep their
// JSON types so that validation reports mistyped ones.
func FromMetadata(publicKey string, content []byte) (map[string]any, error) {
	var meta map[string]any
	if err := json.Unmarshal(content, &meta); err != nil {
		return nil, fmt.Errorf("decode profile metadata: %w", err)
	}

	input := map[string]any{"public_key": publicKey}
	for _, f := range Definition.Fields {
		if v, ok := meta[f.Name]; ok && f.Name != "public_key" {
			input[f.Name] = v
		}
	}
	return input, nil
}
