package site

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/montpellier/internal/domain/cards"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

// FilterAll shows every gallery tile.
const FilterAll = "all"

type galleryTile struct {
	node     *html.Node
	category string
	found    bool
}

// GallerySection fills #gallery-container with the tiles whose image
// exists, in source order. When the gallery document cannot be loaded the
// hardcoded fallback list is used instead.
type GallerySection struct {
	container *html.Node
	controls  *goquery.Selection
	content   ContentSource
	logger    logger.Logger

	tiles []*galleryTile
	shown []*galleryTile
}

// Name implements section.
func (s *GallerySection) Name() string { return "gallery" }

// Load implements section. It never fails: a load error switches to the
// fallback gallery.
func (s *GallerySection) Load(ctx context.Context) ([]imageJob, error) {
	empty(s.container)

	gallery, err := s.content.Gallery(ctx)
	if err != nil {
		metrics.RecordGalleryFallback()
		s.logger.Warn(ctx, "gallery unavailable, using fallback list", logger.Error(err))
		gallery = model.FallbackGallery()
	}

	var jobs []imageJob
	for _, entry := range gallery {
		for _, file := range entry.Files {
			c := cards.GalleryTile(entry.Category, file)
			tile := &galleryTile{node: c.Node, category: entry.Category}
			s.tiles = append(s.tiles, tile)
			jobs = append(jobs, imageJob{
				candidate: c.Images[0].Candidate,
				apply:     func(exists bool) { tile.found = exists },
			})
		}
	}
	return jobs, nil
}

// Finish appends the tiles whose image exists.
func (s *GallerySection) Finish() {
	for _, t := range s.tiles {
		if !t.found {
			continue
		}
		s.container.AppendChild(t.node)
		s.shown = append(s.shown, t)
	}
}

// Filter shows the tiles of category (every tile for FilterAll), hides the
// rest and marks the matching control active. It only touches the tiles
// already shown, so applying it twice changes nothing.
func (s *GallerySection) Filter(category string) {
	for _, t := range s.shown {
		if category == FilterAll || t.category == category {
			setDisplay(t.node, "block")
		} else {
			setDisplay(t.node, "none")
		}
	}
	label := "other"
	s.controls.Each(func(_ int, c *goquery.Selection) {
		if c.AttrOr("data-category", "") == category {
			c.AddClass("active")
			label = category
			return
		}
		c.RemoveClass("active")
	})
	// Unknown tokens share one label.
	metrics.RecordGalleryFilter(label)
}
