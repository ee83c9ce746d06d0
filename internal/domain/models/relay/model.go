// Package relay provides the nostr relay model, filled from the relay's
// NIP-11 information document.
package relay

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/metadata"
)

// Name is the entity and table name.
const Name = relations.RelayTable

// List kinds answered besides "all". The value is a profile public key.
const (
	ListOnKey  = "on_key"
	ListOffKey = "off_key"
)

// Relay is a nostr relay endpoint.
type Relay struct {
	entity.Base

	URL string `db:"url" json:"url" field:"required,unique" validate:"url,wsurl"`

	RelayID       *string `db:"relay_id" json:"relay_id,omitempty"`
	Name          *string `db:"name" json:"name,omitempty"`
	Description   *string `db:"description" json:"description,omitempty"`
	Pubkey        *string `db:"pubkey" json:"pubkey,omitempty"`
	Contact       *string `db:"contact" json:"contact,omitempty"`
	SupportedNips *string `db:"supported_nips" json:"supported_nips,omitempty"`
	Software      *string `db:"software" json:"software,omitempty"`
	Version       *string `db:"version" json:"version,omitempty"`

	// Data keeps the raw information document.
	Data *string `db:"data" json:"data,omitempty"`
}

// Definition is the registered contract of Relay.
var Definition = metadata.Inspect(Relay{}, Name).
	WithSelectors(entity.ColumnID, "url").
	WithLists(relations.Lists(relations.ProfileRelay, Name, ListOnKey, ListOffKey, "public_key")...).
	WithForm("url", metadata.Form{Label: "URL", Placeholder: "wss://", Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh}).
	WithForm("data", metadata.Form{Validation: metadata.RegexText, Charset: metadata.RegexTextCh, Hidden: true})

// Parse interprets rec as a Relay.
func Parse(rec any) (Relay, bool) {
	return contract.Parse[Relay](Definition, rec)
}

// ParseList parses a result set, dropping rows that are not relays.
func ParseList(v any) ([]Relay, bool) {
	return contract.ParseList[Relay](Definition, v)
}

// info is the subset of a NIP-11 document mapped onto columns.
type info struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Pubkey        string `json:"pubkey"`
	Contact       string `json:"contact"`
	SupportedNips []int  `json:"supported_nips"`
	Software      string `json:"software"`
	Version       string `json:"version"`
}

// FromInfo builds creation input for the relay at url from its NIP-11
// information document. supported_nips is stored comma separated and the
// whole document is kept in data.
func FromInfo(url string, doc []byte) (map[string]any, error) {
	var in info
	if err := json.Unmarshal(doc, &in); err != nil {
		return nil, fmt.Errorf("decode relay information: %w", err)
	}

	input := map[string]any{"url": url, "data": string(doc)}
	set := func(k, v string) {
		if v != "" {
			input[k] = v
		}
	}
	set("relay_id", in.ID)
	set("name", in.Name)
	set("description", in.Description)
	set("pubkey", in.Pubkey)
	set("contact", in.Contact)
	set("software", in.Software)
	set("version", in.Version)

	if len(in.SupportedNips) > 0 {
		nips := make([]string, len(in.SupportedNips))
		for i, n := range in.SupportedNips {
			nips[i] = strconv.Itoa(n)
		}
		input["supported_nips"] = strings.Join(nips, ",")
	}
	return input, nil
}
