package cards_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/okian/montpellier/internal/domain/cards"
	"github.com/okian/montpellier/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const hostile = `<script>alert("x")</script> & 'q' <b>`

func render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		panic(err)
	}
	return buf.String()
}

func parse(s string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return doc
}

func TestPlayerCard(t *testing.T) {
	Convey("Given a first place player", t, func() {
		c := cards.Player(model.PlayerRecord{ID: "Juan Pérez", Nombre: "Juan", Texto: "Campeón 2024", Puesto: model.NewPuesto("1")})
		out := render(c.Node)
		doc := parse(out)

		Convey("Then the card has the expected structure", func() {
			So(doc.Find("div.player-card > div.card_box").Length(), ShouldEqual, 1)
			So(doc.Find(".card_box").AttrOr("aria-label", ""), ShouldEqual, "Juan - Campeón 2024")
			So(doc.Find("span.badge-1").AttrOr("data-badge", ""), ShouldEqual, "#1")
			So(doc.Find(".player-name-box .player-text-small").Text(), ShouldEqual, "Campeón 2024")
			So(doc.Find(".player-name-box .player-name").Text(), ShouldEqual, "Juan")
		})

		Convey("Then its image target sets the box background", func() {
			So(c.Images, ShouldHaveLength, 1)
			So(c.Images[0].Candidate, ShouldEqual, "./img/jugadores/juan_perez.jpg")
			c.Images[0].Apply(cards.DefaultPlaceholder)
			doc := parse(render(c.Node))
			So(doc.Find(".card_box").AttrOr("style", ""), ShouldEqual, "background-image: url('./img/placeholder.jpg')")
		})
	})
}

func TestBadgeClass(t *testing.T) {
	Convey("Given each rank", t, func() {
		So(cards.BadgeClass(model.NewPuesto("1")), ShouldEqual, "badge-1")
		So(cards.BadgeClass(model.NewPuesto("2")), ShouldEqual, "badge-2")
		So(cards.BadgeClass(model.NewPuesto("3")), ShouldEqual, "badge-3")
		So(cards.BadgeClass(model.NewPuesto("1.0")), ShouldEqual, "badge-1")
		So(cards.BadgeClass(model.NewPuesto("")), ShouldEqual, "badge-none")
		So(cards.BadgeClass(model.Puesto{}), ShouldEqual, "badge-default")
		So(cards.BadgeClass(model.NewPuesto("4")), ShouldEqual, "badge-default")
		So(cards.BadgeClass(model.NewPuesto("campeón")), ShouldEqual, "badge-default")
		So(cards.BadgeClass(model.NewPuesto("1.5")), ShouldEqual, "badge-default")
	})
}

func TestFormatPrice(t *testing.T) {
	Convey("Given published prices", t, func() {
		So(cards.FormatPrice("12000"), ShouldEqual, "$\u00a012.000")
		So(cards.FormatPrice("$ 8.500"), ShouldEqual, "$\u00a09")
		So(cards.FormatPrice("$8500"), ShouldEqual, "$\u00a08.500")
		So(cards.FormatPrice("1234567"), ShouldEqual, "$\u00a01.234.567")
		So(cards.FormatPrice("999"), ShouldEqual, "$\u00a0999")
		So(cards.FormatPrice("12.5"), ShouldEqual, "$\u00a013")
		So(cards.FormatPrice("-3000"), ShouldEqual, "-$\u00a03.000")
		So(cards.FormatPrice("0"), ShouldEqual, "$\u00a00")
		So(cards.FormatPrice("abc"), ShouldEqual, "abc")
		So(cards.FormatPrice("1.2.3"), ShouldEqual, "1.2.3")
		So(cards.FormatPrice("Consultar -"), ShouldEqual, "Consultar -")
	})
}

func TestMenuCards(t *testing.T) {
	Convey("Given a priced and an unpriced item", t, func() {
		items := []model.MenuItem{
			{ID: "Café Tinto", Nombre: "Café Tinto", Precio: model.Price{Raw: "3500", Set: true}},
			{ID: "agua", Nombre: "Agua"},
		}
		c := cards.MenuCategory("bebidas", items)
		doc := parse(render(c.Node))

		Convey("Then the category wraps a titled grid", func() {
			So(doc.Find(".menu-category > h3.subsection-title").Text(), ShouldEqual, "Bebidas")
			So(doc.Find(".menu-category > .menu-grid > .menu-item").Length(), ShouldEqual, 2)
		})

		Convey("Then only the priced item has a price tag", func() {
			priced := doc.Find(".menu-item").First()
			So(priced.HasClass("has-price"), ShouldBeTrue)
			So(priced.Children().First().HasClass("price-tag"), ShouldBeTrue)
			So(priced.Find(".price-tag").Text(), ShouldEqual, "$\u00a03.500")
			So(doc.Find(".menu-item").Last().HasClass("has-price"), ShouldBeFalse)
			So(doc.Find(".price-tag").Length(), ShouldEqual, 1)
		})

		Convey("Then image targets point at the category folder", func() {
			So(c.Images, ShouldHaveLength, 2)
			So(c.Images[0].Candidate, ShouldEqual, "./img/menu/bebidas/cafe_tinto.jpg")
			So(c.Images[1].Candidate, ShouldEqual, "./img/menu/bebidas/agua.jpg")
			So(doc.Find("img").First().AttrOr("alt", ""), ShouldEqual, "Café Tinto - bebidas")
			So(doc.Find("img").First().AttrOr("loading", ""), ShouldEqual, "lazy")
		})
	})
}

func TestEventAndGalleryCards(t *testing.T) {
	Convey("Given an event", t, func() {
		c := cards.Event(model.EventRecord{ID: "Torneo Nocturno", Nombre: "Torneo Nocturno", Descripcion: "Todos los viernes"})
		doc := parse(render(c.Node))

		So(doc.Find(".event-card > img").AttrOr("alt", ""), ShouldEqual, "Torneo Nocturno - Todos los viernes")
		So(doc.Find(".event-content > h4.event-title").Text(), ShouldEqual, "Torneo Nocturno")
		So(doc.Find(".event-content > p.event-description").Text(), ShouldEqual, "Todos los viernes")
		So(c.Images[0].Candidate, ShouldEqual, "./img/eventos/torneo_nocturno.jpg")

		c.Images[0].Apply("./img/eventos/torneo_nocturno.jpg")
		So(parse(render(c.Node)).Find("img").AttrOr("src", ""), ShouldEqual, "./img/eventos/torneo_nocturno.jpg")
	})

	Convey("Given a gallery file", t, func() {
		c := cards.GalleryTile("mesas", "vista mesas.jpg")
		doc := parse(render(c.Node))

		So(doc.Find(".gallery-item").AttrOr("data-category", ""), ShouldEqual, "mesas")
		So(doc.Find(".gallery-item img").AttrOr("src", ""), ShouldEqual, "./img/galeria/mesas/vista%20mesas.jpg")
		So(doc.Find(".gallery-item img").AttrOr("alt", ""), ShouldEqual, "mesas - vista mesas.jpg")
		So(c.Images[0].Candidate, ShouldEqual, "./img/galeria/mesas/vista%20mesas.jpg")
	})

	Convey("Given unknown image kinds", t, func() {
		So(cards.ImagePath("otros", "", "x"), ShouldEqual, cards.DefaultPlaceholder)
	})
}

func TestCardsEscapeRecordText(t *testing.T) {
	Convey("Given records carrying markup and quotes", t, func() {
		rendered := []string{
			render(cards.Player(model.PlayerRecord{ID: hostile, Nombre: hostile, Texto: hostile, Puesto: model.NewPuesto("1")}).Node),
			render(cards.MenuCategory(hostile, []model.MenuItem{{ID: hostile, Nombre: hostile, Precio: model.Price{Raw: hostile, Set: true}}}).Node),
			render(cards.Event(model.EventRecord{ID: hostile, Nombre: hostile, Descripcion: hostile}).Node),
			render(cards.GalleryTile(hostile, hostile).Node),
		}

		for _, out := range rendered {
			So(out, ShouldNotContainSubstring, "<script>")
			So(out, ShouldNotContainSubstring, "<b>")
			So(out, ShouldContainSubstring, "&lt;script&gt;")
			So(out, ShouldContainSubstring, "&amp;")
			So(out, ShouldContainSubstring, "&#39;q&#39;")
			So(parse(out).Find("script, b").Length(), ShouldEqual, 0)
		}
	})
}
