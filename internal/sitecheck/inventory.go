package sitecheck

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/montpellier/internal/adapters/content"
	"github.com/okian/montpellier/internal/domain/cards"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
)

// inventory collects fetch results and the image candidates derived from them.
type inventory struct {
	mu        sync.Mutex
	results   map[string]ResourceResult
	derived   map[string][]ImageCheck
	resources []string
}

func newInventory() *inventory {
	return &inventory{
		results:   make(map[string]ResourceResult),
		derived:   make(map[string][]ImageCheck),
		resources: content.Resources(),
	}
}

func (inv *inventory) record(res ResourceResult, images []ImageCheck) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.results[res.Resource] = res
	inv.derived[res.Resource] = images
}

// ordered returns results and candidates in resource order.
func (inv *inventory) ordered() ([]ResourceResult, []ImageCheck) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	results := make([]ResourceResult, 0, len(inv.resources))
	var images []ImageCheck
	for _, r := range inv.resources {
		results = append(results, inv.results[r])
		images = append(images, inv.derived[r]...)
	}
	return results, images
}

// collectResources fetches the five resources concurrently. A failing
// resource is recorded, never returned, so the others still get checked.
func collectResources(ctx context.Context, f *content.Fetcher, placeholder string) ([]ResourceResult, []ImageCheck) {
	inv := newInventory()
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(resource string, load func(context.Context) (int, []ImageCheck, error)) {
		g.Go(func() error {
			start := time.Now()
			n, images, err := load(gctx)
			res := ResourceResult{Resource: resource, Records: n, Err: err, Duration: time.Since(start)}
			if err != nil {
				logger.Get().Warn(gctx, "resource failed", logger.String("resource", resource), logger.Error(err))
				images = nil
			}
			inv.record(res, images)
			return nil
		})
	}

	fetch(content.ResourcePlayers, func(ctx context.Context) (int, []ImageCheck, error) {
		players, err := f.Players(ctx)
		return len(players), playerImages(players), err
	})
	fetch(content.ResourceMenu, func(ctx context.Context) (int, []ImageCheck, error) {
		menu, err := f.Menu(ctx)
		n := 0
		for _, c := range menu {
			n += len(c.Items)
		}
		return n, menuImages(menu), err
	})
	fetch(content.ResourceGallery, func(ctx context.Context) (int, []ImageCheck, error) {
		gallery, err := f.Gallery(ctx)
		n := 0
		for _, e := range gallery {
			n += len(e.Files)
		}
		return n, galleryImages(gallery), err
	})
	fetch(content.ResourceEvents, func(ctx context.Context) (int, []ImageCheck, error) {
		board, err := f.Events(ctx)
		return len(board.Torneos) + len(board.FechasEspeciales) + len(board.Publicaciones), eventImages(board), err
	})
	fetch(content.ResourceContact, func(ctx context.Context) (int, []ImageCheck, error) {
		meta, err := f.ContactMetadata(ctx)
		return len(meta.ContactPhones) + len(meta.ContactEmails) + len(meta.WhatsAppButtons), nil, err
	})

	_ = g.Wait()

	results, images := inv.ordered()
	images = append(images, ImageCheck{Source: "placeholder", Candidate: placeholder})
	return results, images
}

func playerImages(players []model.PlayerRecord) []ImageCheck {
	out := make([]ImageCheck, 0, len(players))
	for _, p := range players {
		out = append(out, ImageCheck{Source: content.ResourcePlayers, Candidate: cards.ImagePath(cards.KindPlayer, "", p.ID)})
	}
	return out
}

func menuImages(menu model.MenuCatalog) []ImageCheck {
	var out []ImageCheck
	for _, c := range menu {
		for _, item := range c.Items {
			out = append(out, ImageCheck{Source: content.ResourceMenu, Candidate: cards.ImagePath(cards.KindMenu, c.Key, item.ID)})
		}
	}
	return out
}

func galleryImages(gallery model.Gallery) []ImageCheck {
	var out []ImageCheck
	for _, e := range gallery {
		for _, file := range e.Files {
			out = append(out, ImageCheck{Source: content.ResourceGallery, Candidate: cards.GalleryPath(e.Category, file)})
		}
	}
	return out
}

func eventImages(board model.EventsBoard) []ImageCheck {
	var out []ImageCheck
	for _, list := range [][]model.EventRecord{board.Torneos, board.FechasEspeciales, board.Publicaciones} {
		for _, e := range list {
			out = append(out, ImageCheck{Source: content.ResourceEvents, Candidate: cards.ImagePath(cards.KindEvent, "", e.ID)})
		}
	}
	return out
}
