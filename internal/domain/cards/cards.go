// Package cards renders content records into detached HTML node trees.
//
// Record text only ever becomes text nodes or attribute values, so rendering
// with html.Render entity-encodes it and no record can change the structure
// around it.
package cards

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/montpellier/internal/domain/model"
)

// Card is a rendered record and the images it still needs to resolve.
type Card struct {
	Node   *html.Node
	Images []ImageTarget
}

// ImageTarget is a candidate image bound to the node that will show it.
type ImageTarget struct {
	Candidate string
	// Apply writes the resolved path into the captured node.
	Apply func(resolved string)
}

// Player renders a player card. The image becomes the box background.
func Player(p model.PlayerRecord) Card {
	box := element(atom.Div,
		"class", "card_box",
		"role", "img",
		"aria-label", p.Nombre+" - "+p.Texto,
	)
	badge := element(atom.Span, "data-badge", "#"+p.Puesto.String(), "class", BadgeClass(p.Puesto))
	nameBox := appendAll(element(atom.Div, "class", "player-name-box"),
		withText(element(atom.Small, "class", "player-text-small"), p.Texto),
		withText(element(atom.Div, "class", "player-name"), p.Nombre),
	)
	appendAll(box, badge, nameBox)
	card := appendAll(element(atom.Div, "class", "player-card"), box)

	return Card{
		Node: card,
		Images: []ImageTarget{{
			Candidate: ImagePath(KindPlayer, "", p.ID),
			Apply: func(resolved string) {
				setAttr(box, "style", "background-image: url('"+resolved+"')")
			},
		}},
	}
}

// MenuItem renders one menu item of category.
func MenuItem(item model.MenuItem, category string) Card {
	card := element(atom.Div, "class", "menu-item")
	if item.Precio.Present() {
		setAttr(card, "class", "menu-item has-price")
		card.AppendChild(withText(element(atom.Div, "class", "price-tag"), FormatPrice(item.Precio.Raw)))
	}
	img := lazyImage(item.Nombre + " - " + category)
	appendAll(card, img, withText(element(atom.Div, "class", "menu-item-name"), item.Nombre))

	return Card{
		Node:   card,
		Images: []ImageTarget{srcTarget(img, ImagePath(KindMenu, category, item.ID))},
	}
}

// MenuCategory wraps the cards of one category under its title.
func MenuCategory(key string, items []model.MenuItem) Card {
	grid := element(atom.Div, "class", "menu-grid")
	var images []ImageTarget
	for _, it := range items {
		c := MenuItem(it, key)
		grid.AppendChild(c.Node)
		images = append(images, c.Images...)
	}
	section := appendAll(element(atom.Div, "class", "menu-category"),
		withText(element(atom.H3, "class", "subsection-title"), model.CategoryTitle(key)),
		grid,
	)
	return Card{Node: section, Images: images}
}

// Event renders a tournament, special date or announcement.
func Event(e model.EventRecord) Card {
	img := lazyImage(e.Nombre + " - " + e.Descripcion)
	content := appendAll(element(atom.Div, "class", "event-content"),
		withText(element(atom.H4, "class", "event-title"), e.Nombre),
		withText(element(atom.P, "class", "event-description"), e.Descripcion),
	)
	card := appendAll(element(atom.Div, "class", "event-card"), img, content)

	return Card{
		Node:   card,
		Images: []ImageTarget{srcTarget(img, ImagePath(KindEvent, "", e.ID))},
	}
}

// GalleryTile renders one gallery image. The tile is only meant to be shown
// once its image is known to exist, so src is set up front.
func GalleryTile(category, file string) Card {
	path := GalleryPath(category, file)
	img := lazyImage(category + " - " + file)
	setAttr(img, "src", path)
	tile := appendAll(element(atom.Div, "class", "gallery-item", "data-category", category), img)

	return Card{
		Node:   tile,
		Images: []ImageTarget{srcTarget(img, path)},
	}
}

func lazyImage(alt string) *html.Node {
	return element(atom.Img, "alt", alt, "loading", "lazy", "decoding", "async")
}

func srcTarget(img *html.Node, candidate string) ImageTarget {
	return ImageTarget{
		Candidate: candidate,
		Apply:     func(resolved string) { setAttr(img, "src", resolved) },
	}
}
