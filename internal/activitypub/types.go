package activitypub

import "encoding/json"

const activityContext = "https://www.w3.org/ns/activitystreams"

// WebfingerResponse answers /.well-known/webfinger discovery lookups.
type WebfingerResponse struct {
	Subject string          `json:"subject"`
	Links   []WebfingerLink `json:"links"`
}

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Actor is the blog's ActivityPub actor document.
type Actor struct {
	Context           string    `json:"@context"`
	Type              string    `json:"type"`
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	PreferredUsername string    `json:"preferredUsername"`
	Summary           string    `json:"summary"`
	Inbox             string    `json:"inbox"`
	Outbox            string    `json:"outbox"`
	Followers         string    `json:"followers"`
	Following         string    `json:"following"`
	PublicKey         PublicKey `json:"publicKey"`
}

type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Activity is an outbound activity envelope.
type Activity struct {
	Context   string `json:"@context,omitempty"`
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Actor     string `json:"actor,omitempty"`
	Published string `json:"published,omitempty"`
	Object    any    `json:"object,omitempty"`
}

// ArticleObject is a published article rendered as an ActivityStreams object.
type ArticleObject struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	URL          string `json:"url"`
	AttributedTo string `json:"attributedTo"`
	Published    string `json:"published,omitempty"`
}

// OrderedCollection wraps outbox and follower listings.
type OrderedCollection struct {
	Context      string `json:"@context"`
	Type         string `json:"type"`
	TotalItems   int    `json:"totalItems"`
	OrderedItems []any  `json:"orderedItems"`
}

// inboundActivity is the loosely-typed shape incoming activities are decoded
// into. Object varies by type: an IRI string for Like and Undo-of-Follow, an
// embedded object for Create and Undo.
type inboundActivity struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Actor  string          `json:"actor"`
	Object json.RawMessage `json:"object"`
}

type inboundNote struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Content      string `json:"content"`
	AttributedTo string `json:"attributedTo"`
	InReplyTo    string `json:"inReplyTo"`
}

// remoteActor is the subset of a fetched actor document needed for delivery.
type remoteActor struct {
	ID    string `json:"id"`
	Inbox string `json:"inbox"`
}
