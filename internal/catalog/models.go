// Package catalog holds the demo publishing models served and encoded by forge
package catalog

import (
	"time"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// Type discriminators of the catalog models
const (
	TypePublishers = "publishers"
	TypeAuthors    = "authors"
	TypeArticles   = "articles"
	TypeComments   = "comments"
)

// Publisher publishes articles and employs authors
type Publisher struct {
	jsonapi.Model
	Name    string
	Country string
	Authors jsonapi.ToMany[*Author]
}

// Author writes articles and comments
type Author struct {
	jsonapi.Model
	Name      string
	Email     string
	Publisher jsonapi.ToOne[*Publisher]
}

// Article is the main catalog resource
type Article struct {
	jsonapi.Model
	Title         string
	Body          string
	TagsByKeyword map[string][]string
	PublishedAt   *time.Time
	Sections      []Section
	Stats         *Stats
	Author        jsonapi.ToOne[*Author]
	Publisher     jsonapi.ToOne[*Publisher]
	Comments      jsonapi.ToMany[*Comment]
}

// Comment is a reader comment on an article
type Comment struct {
	jsonapi.Model
	Body    string
	Author  jsonapi.ToOne[*Author]
	Article jsonapi.ToOne[*Article]
}

// Section is an embedded part of an article body
type Section struct {
	Heading string
	Body    string
	Order   int
}

// Wrapped implements jsonapi.Wrapper
func (s Section) Wrapped() jsonapi.Wrapped {
	return jsonapi.Wrapped{
		"heading": s.Heading,
		"body":    s.Body,
		"order":   s.Order,
	}
}

// Stats is read-side meta about an article
type Stats struct {
	Views        int
	LastViewedAt time.Time
}

// Wrapped implements jsonapi.Wrapper
func (s *Stats) Wrapped() jsonapi.Wrapped {
	bag := jsonapi.Wrapped{"views": s.Views}
	if !s.LastViewedAt.IsZero() {
		bag["lastViewedAt"] = s.LastViewedAt
	}
	return bag
}
