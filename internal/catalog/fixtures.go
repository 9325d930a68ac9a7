package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// ErrUnknownReference is returned when a fixture points at an id that is not defined
var ErrUnknownReference = errors.New("unknown reference")

// Fixtures is the YAML layout of a catalog fixture file.
//
// A relationship key that is missing leaves the relation unloaded, an explicit
// null clears it, and a scalar or sequence holds the related ids.
type Fixtures struct {
	Publishers []publisherFixture `yaml:"publishers"`
	Authors    []authorFixture    `yaml:"authors"`
	Articles   []articleFixture   `yaml:"articles"`
	Comments   []commentFixture   `yaml:"comments"`
}

type modelFixture struct {
	ID        string     `yaml:"id"`
	CreatedAt time.Time  `yaml:"createdAt"`
	UpdatedAt time.Time  `yaml:"updatedAt"`
	DeletedAt *time.Time `yaml:"deletedAt"`
}

func (f modelFixture) model(typ string) jsonapi.Model {
	return jsonapi.NewModel(typ,
		jsonapi.WithID(f.ID),
		jsonapi.WithTimestamps(jsonapi.Timestamps{
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			DeletedAt: f.DeletedAt,
		}),
	)
}

type publisherFixture struct {
	modelFixture `yaml:",inline"`
	Name         string    `yaml:"name"`
	Country      string    `yaml:"country"`
	Authors      yaml.Node `yaml:"authors"`
}

type authorFixture struct {
	modelFixture `yaml:",inline"`
	Name         string    `yaml:"name"`
	Email        string    `yaml:"email"`
	Publisher    yaml.Node `yaml:"publisher"`
}

type sectionFixture struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

type statsFixture struct {
	Views        int       `yaml:"views"`
	LastViewedAt time.Time `yaml:"lastViewedAt"`
}

type articleFixture struct {
	modelFixture  `yaml:",inline"`
	Title         string              `yaml:"title"`
	Body          string              `yaml:"body"`
	TagsByKeyword map[string][]string `yaml:"tagsByKeyword"`
	PublishedAt   *time.Time          `yaml:"publishedAt"`
	Sections      []sectionFixture    `yaml:"sections"`
	Stats         *statsFixture       `yaml:"stats"`
	Author        yaml.Node           `yaml:"author"`
	Publisher     yaml.Node           `yaml:"publisher"`
	Comments      yaml.Node           `yaml:"comments"`
}

type commentFixture struct {
	modelFixture `yaml:",inline"`
	Body         string    `yaml:"body"`
	Author       yaml.Node `yaml:"author"`
	Article      yaml.Node `yaml:"article"`
}

// ref is a decoded relationship reference
type ref struct {
	state jsonapi.RelationState
	ids   []string
}

func parseRef(n yaml.Node, many bool) (ref, error) {
	switch {
	case n.Kind == 0:
		return ref{state: jsonapi.RelationUnloaded}, nil
	case n.ShortTag() == "!!null":
		return ref{state: jsonapi.RelationNull}, nil
	case n.Kind == yaml.ScalarNode && !many:
		return ref{state: jsonapi.RelationLoaded, ids: []string{n.Value}}, nil
	case n.Kind == yaml.SequenceNode && many:
		var ids []string
		if err := n.Decode(&ids); err != nil {
			return ref{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return ref{state: jsonapi.RelationLoaded, ids: ids}, nil
	case many:
		return ref{}, fmt.Errorf("line %d: expected a list of ids", n.Line)
	default:
		return ref{}, fmt.Errorf("line %d: expected an id", n.Line)
	}
}

// LoadFixturesFile reads fixtures from path
func LoadFixturesFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

// LoadFixtures decodes a fixture file and links the relationships by id
func LoadFixtures(r io.Reader) (*Store, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return fx.Build()
}

// Build creates every model, links the relationships and returns the filled store
func (fx *Fixtures) Build() (*Store, error) {
	l := newLinker()

	for _, f := range fx.Publishers {
		l.publishers[f.ID] = &Publisher{Model: f.model(TypePublishers), Name: f.Name, Country: f.Country}
	}
	for _, f := range fx.Authors {
		l.authors[f.ID] = &Author{Model: f.model(TypeAuthors), Name: f.Name, Email: f.Email}
	}
	for _, f := range fx.Articles {
		a := &Article{
			Model:         f.model(TypeArticles),
			Title:         f.Title,
			Body:          f.Body,
			TagsByKeyword: f.TagsByKeyword,
			PublishedAt:   f.PublishedAt,
		}
		for i, s := range f.Sections {
			a.Sections = append(a.Sections, Section{Heading: s.Heading, Body: s.Body, Order: i + 1})
		}
		if f.Stats != nil {
			a.Stats = &Stats{Views: f.Stats.Views, LastViewedAt: f.Stats.LastViewedAt}
		}
		l.articles[f.ID] = a
	}
	for _, f := range fx.Comments {
		l.comments[f.ID] = &Comment{Model: f.model(TypeComments), Body: f.Body}
	}

	store := NewStore()
	var err error

	for _, f := range fx.Publishers {
		p := l.publishers[f.ID]
		if p.Authors, err = linkMany(f.Authors, TypeAuthors, l.authors); err != nil {
			return nil, fmt.Errorf("publishers/%s.authors: %w", f.ID, err)
		}
		if err := store.Add(p); err != nil {
			return nil, err
		}
	}
	for _, f := range fx.Authors {
		a := l.authors[f.ID]
		if a.Publisher, err = linkOne(f.Publisher, TypePublishers, l.publishers); err != nil {
			return nil, fmt.Errorf("authors/%s.publisher: %w", f.ID, err)
		}
		if err := store.Add(a); err != nil {
			return nil, err
		}
	}
	for _, f := range fx.Articles {
		a := l.articles[f.ID]
		if a.Author, err = linkOne(f.Author, TypeAuthors, l.authors); err != nil {
			return nil, fmt.Errorf("articles/%s.author: %w", f.ID, err)
		}
		if a.Publisher, err = linkOne(f.Publisher, TypePublishers, l.publishers); err != nil {
			return nil, fmt.Errorf("articles/%s.publisher: %w", f.ID, err)
		}
		if a.Comments, err = linkMany(f.Comments, TypeComments, l.comments); err != nil {
			return nil, fmt.Errorf("articles/%s.comments: %w", f.ID, err)
		}
		if err := store.Add(a); err != nil {
			return nil, err
		}
	}
	for _, f := range fx.Comments {
		c := l.comments[f.ID]
		if c.Author, err = linkOne(f.Author, TypeAuthors, l.authors); err != nil {
			return nil, fmt.Errorf("comments/%s.author: %w", f.ID, err)
		}
		if c.Article, err = linkOne(f.Article, TypeArticles, l.articles); err != nil {
			return nil, fmt.Errorf("comments/%s.article: %w", f.ID, err)
		}
		if err := store.Add(c); err != nil {
			return nil, err
		}
	}

	return store, nil
}

type linker struct {
	publishers map[string]*Publisher
	authors    map[string]*Author
	articles   map[string]*Article
	comments   map[string]*Comment
}

func newLinker() *linker {
	return &linker{
		publishers: make(map[string]*Publisher),
		authors:    make(map[string]*Author),
		articles:   make(map[string]*Article),
		comments:   make(map[string]*Comment),
	}
}

func linkOne[T jsonapi.Resource](n yaml.Node, typ string, pool map[string]T) (jsonapi.ToOne[T], error) {
	r, err := parseRef(n, false)
	if err != nil {
		return jsonapi.ToOne[T]{}, err
	}
	switch r.state {
	case jsonapi.RelationNull:
		return jsonapi.NullOne[T](), nil
	case jsonapi.RelationLoaded:
		v, ok := pool[r.ids[0]]
		if !ok {
			return jsonapi.ToOne[T]{}, fmt.Errorf("%w: %s/%s", ErrUnknownReference, typ, r.ids[0])
		}
		return jsonapi.One(v), nil
	default:
		return jsonapi.ToOne[T]{}, nil
	}
}

func linkMany[T jsonapi.Resource](n yaml.Node, typ string, pool map[string]T) (jsonapi.ToMany[T], error) {
	r, err := parseRef(n, true)
	if err != nil {
		return jsonapi.ToMany[T]{}, err
	}
	switch r.state {
	case jsonapi.RelationNull:
		return jsonapi.NullMany[T](), nil
	case jsonapi.RelationLoaded:
		items := make([]T, 0, len(r.ids))
		for _, id := range r.ids {
			v, ok := pool[id]
			if !ok {
				return jsonapi.ToMany[T]{}, fmt.Errorf("%w: %s/%s", ErrUnknownReference, typ, id)
			}
			items = append(items, v)
		}
		return jsonapi.Many(items...), nil
	default:
		return jsonapi.ToMany[T]{}, nil
	}
}
