// Package model defines the data structures shared across the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Language is the set of languages a snippet can be written in.
//
// WHY A NAMED STRING TYPE?
// A plain string would accept anything ("pyhton", "GO!!"). A named type plus
// a closed set of constants gives us a single place that defines what's valid,
// and Valid() below is the one check everyone uses.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangPython     Language = "python"
	LangCSharp     Language = "csharp"
	LangJava       Language = "java"
	LangPHP        Language = "php"
)

// Languages lists every supported language, in display order.
var Languages = []Language{
	LangJavaScript, LangTypeScript, LangHTML, LangCSS,
	LangPython, LangCSharp, LangJava, LangPHP,
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// Visibility controls who can read a snippet.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Snippet represents a shared code snippet.
//
// OwnerID is immutable after creation — only the owner may edit or delete
// the snippet, and a private snippet is readable only by its owner.
//
// IDs are xids: 20-char, URL-safe, and time-prefixed, so sorting by id is
// roughly sorting by creation time. The feeds rely on (created_at, id) as a
// total order; the id part breaks ties when two snippets share a timestamp.
//
// The `json:"..."` tags tell encoding/json how to serialize this struct.
type Snippet struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Language    Language   `json:"language"`
	Visibility  Visibility `json:"visibility"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsPublic reports whether the snippet is readable by everyone.
func (s *Snippet) IsPublic() bool {
	return s.Visibility == VisibilityPublic
}
