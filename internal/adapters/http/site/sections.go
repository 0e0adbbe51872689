package site

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/montpellier/internal/domain/cards"
	"github.com/okian/montpellier/internal/domain/model"
)

// placeholderJobs resolves each target to its candidate or the placeholder.
func placeholderJobs(targets []cards.ImageTarget, placeholder string) []imageJob {
	jobs := make([]imageJob, 0, len(targets))
	for _, t := range targets {
		jobs = append(jobs, imageJob{
			candidate: t.Candidate,
			apply: func(exists bool) {
				if exists {
					t.Apply(t.Candidate)
					return
				}
				t.Apply(placeholder)
			},
		})
	}
	return jobs
}

// PlayersSection fills #players-container with player cards.
type PlayersSection struct {
	container   *html.Node
	content     ContentSource
	placeholder string
}

// Name implements section.
func (s *PlayersSection) Name() string { return "players" }

// Load implements section. On failure the container keeps its template
// content.
func (s *PlayersSection) Load(ctx context.Context) ([]imageJob, error) {
	players, err := s.content.Players(ctx)
	if err != nil {
		return nil, err
	}
	empty(s.container)
	var jobs []imageJob
	for _, p := range players {
		c := cards.Player(p)
		s.container.AppendChild(c.Node)
		jobs = append(jobs, placeholderJobs(c.Images, s.placeholder)...)
	}
	return jobs, nil
}

// Finish implements section.
func (s *PlayersSection) Finish() {}

// MenuSection fills #menu-container with one block per non-empty category,
// in document order.
type MenuSection struct {
	container   *html.Node
	content     ContentSource
	placeholder string
}

// Name implements section.
func (s *MenuSection) Name() string { return "menu" }

// Load implements section.
func (s *MenuSection) Load(ctx context.Context) ([]imageJob, error) {
	menu, err := s.content.Menu(ctx)
	if err != nil {
		return nil, err
	}
	empty(s.container)
	var jobs []imageJob
	for _, cat := range menu {
		if len(cat.Items) == 0 {
			continue
		}
		c := cards.MenuCategory(cat.Key, cat.Items)
		s.container.AppendChild(c.Node)
		jobs = append(jobs, placeholderJobs(c.Images, s.placeholder)...)
	}
	return jobs, nil
}

// Finish implements section.
func (s *MenuSection) Finish() {}

// EventsSection fills the tournaments, special dates and announcements
// containers. The announcements block is hidden when there are none.
type EventsSection struct {
	torneos       *html.Node
	fechas        *html.Node
	publicaciones *html.Node
	pubSection    *html.Node
	content       ContentSource
	placeholder   string
}

func newEventsSection(doc *goquery.Document, content ContentSource, placeholder string) *EventsSection {
	s := &EventsSection{
		torneos:       byID(doc, "torneos-container"),
		fechas:        byID(doc, "fechas-container"),
		publicaciones: byID(doc, "publicaciones-container"),
		pubSection:    byID(doc, "publicaciones-section"),
		content:       content,
		placeholder:   placeholder,
	}
	if s.torneos == nil && s.fechas == nil && s.publicaciones == nil {
		return nil
	}
	return s
}

// Name implements section.
func (s *EventsSection) Name() string { return "events" }

// Load implements section.
func (s *EventsSection) Load(ctx context.Context) ([]imageJob, error) {
	board, err := s.content.Events(ctx)
	if err != nil {
		return nil, err
	}

	var jobs []imageJob
	fill := func(container *html.Node, records []model.EventRecord) {
		if container == nil {
			return
		}
		empty(container)
		for _, e := range records {
			c := cards.Event(e)
			container.AppendChild(c.Node)
			jobs = append(jobs, placeholderJobs(c.Images, s.placeholder)...)
		}
	}
	fill(s.torneos, board.Torneos)
	fill(s.fechas, board.FechasEspeciales)
	fill(s.publicaciones, board.Publicaciones)

	if s.pubSection != nil {
		if len(board.Publicaciones) > 0 {
			setDisplay(s.pubSection, "block")
		} else {
			setDisplay(s.pubSection, "none")
		}
	}
	return jobs, nil
}

// Finish implements section.
func (s *EventsSection) Finish() {}
