package bluesky

import (
	"encoding/json"
	"time"

	"simpleblog/api/internal/compose"
)

// Index is a byte range over the UTF-8 encoding of the post text, as the
// AT protocol defines facet positions.
type Index struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// Feature is a single rich-text feature inside a facet.
type Feature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

type Facet struct {
	Index    Index     `json:"index"`
	Features []Feature `json:"features"`
}

type externalEmbed struct {
	Type     string         `json:"$type"`
	External externalRecord `json:"external"`
}

type externalRecord struct {
	URI         string          `json:"uri"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Thumb       json.RawMessage `json:"thumb,omitempty"`
}

type postRecord struct {
	Type      string         `json:"$type"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"createdAt"`
	Facets    []Facet        `json:"facets,omitempty"`
	Embed     *externalEmbed `json:"embed,omitempty"`
}

type sessionData struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
	Handle    string `json:"handle"`
}

// Engagement is the interaction count summary for a post.
type Engagement struct {
	Likes   int `json:"likes"`
	Reposts int `json:"reposts"`
	Replies int `json:"replies"`
}

// Reply is a flattened thread reply, shaped for rendering as a comment.
type Reply struct {
	AuthorHandle      string    `json:"authorHandle"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	AuthorAvatar      string    `json:"authorAvatar"`
	Text              string    `json:"text"`
	CreatedAt         time.Time `json:"createdAt"`
	URI               string    `json:"uri"`
}

// WireFacets converts composer facets into AT protocol facet records.
//
// ByteStart and ByteEnd carry over unchanged; both sides index the UTF-8
// encoding of the post text.
func WireFacets(facets []compose.Facet) []Facet {
	if len(facets) == 0 {
		return nil
	}
	out := make([]Facet, 0, len(facets))
	for _, f := range facets {
		feature := Feature{}
		switch f.Kind {
		case compose.FacetLink:
			feature.Type = "app.bsky.richtext.facet#link"
			feature.URI = f.Value
		case compose.FacetTag:
			feature.Type = "app.bsky.richtext.facet#tag"
			feature.Tag = f.Value
		default:
			continue
		}
		out = append(out, Facet{
			Index:    Index{ByteStart: f.ByteStart, ByteEnd: f.ByteEnd},
			Features: []Feature{feature},
		})
	}
	return out
}
