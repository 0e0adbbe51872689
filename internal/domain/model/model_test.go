package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/montpellier/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPlayerRecord(t *testing.T) {
	convey.Convey("Given data/jugadores.json with mixed puesto encodings", t, func() {
		raw := `[
			{"id":"Juan Pérez","nombre":"Juan","texto":"Campeón","puesto":1},
			{"id":"b","nombre":"B","texto":"","puesto":"2"},
			{"id":"c","nombre":"C","texto":"","puesto":""},
			{"id":"d","nombre":"D","texto":"","puesto":null},
			{"id":"e","nombre":"E","texto":""},
			{"id":"f","nombre":"F","texto":"","puesto":4.5},
			{"id":"g","nombre":"G","texto":"","puesto":1.0}
		]`

		var players []model.PlayerRecord
		err := json.Unmarshal([]byte(raw), &players)

		convey.Convey("Then every record decodes with a textual puesto", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(players, convey.ShouldHaveLength, 7)
			convey.So(players[0].Puesto, convey.ShouldResemble, model.NewPuesto("1"))
			convey.So(players[1].Puesto, convey.ShouldResemble, model.NewPuesto("2"))
			convey.So(players[2].Puesto, convey.ShouldResemble, model.NewPuesto(""))
			convey.So(players[5].Puesto, convey.ShouldResemble, model.NewPuesto("4.5"))
			convey.So(players[6].Puesto.String(), convey.ShouldEqual, "1.0")
		})

		convey.Convey("Then an empty string differs from null or a missing puesto", func() {
			convey.So(players[2].Puesto.IsEmpty(), convey.ShouldBeTrue)
			convey.So(players[3].Puesto.IsSet(), convey.ShouldBeFalse)
			convey.So(players[3].Puesto.IsEmpty(), convey.ShouldBeFalse)
			convey.So(players[4].Puesto.IsSet(), convey.ShouldBeFalse)
			convey.So(players[4].Puesto.IsEmpty(), convey.ShouldBeFalse)
		})

		convey.Convey("Then Rank parses integral ranks only", func() {
			n, ok := players[0].Puesto.Rank()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 1)
			n, ok = players[6].Puesto.Rank()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 1)
			_, ok = players[5].Puesto.Rank()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = players[3].Puesto.Rank()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestMenuCatalog(t *testing.T) {
	convey.Convey("Given data/menu.json", t, func() {
		raw := `{
			"snacks": [{"id":"papas","nombre":"Papas","precio":"$ 8.000"}],
			"bebidas": [{"id":"agua","nombre":"Agua","precio":3500}, {"id":"cafe","nombre":"Café"}],
			"roto": "not a list",
			"promos": []
		}`

		var menu model.MenuCatalog
		err := json.Unmarshal([]byte(raw), &menu)

		convey.Convey("Then categories keep document order and invalid ones are skipped", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(menu, convey.ShouldHaveLength, 3)
			convey.So(menu[0].Key, convey.ShouldEqual, "snacks")
			convey.So(menu[1].Key, convey.ShouldEqual, "bebidas")
			convey.So(menu[2].Key, convey.ShouldEqual, "promos")
			convey.So(menu[2].Items, convey.ShouldBeEmpty)
		})

		convey.Convey("Then prices keep their text and presence", func() {
			convey.So(menu[0].Items[0].Precio.Raw, convey.ShouldEqual, "$ 8.000")
			convey.So(menu[1].Items[0].Precio.Raw, convey.ShouldEqual, "3500")
			convey.So(menu[1].Items[0].Precio.Present(), convey.ShouldBeTrue)
			convey.So(menu[1].Items[1].Precio.Present(), convey.ShouldBeFalse)
		})

		convey.Convey("Then category titles are translated", func() {
			convey.So(model.CategoryTitle("promos"), convey.ShouldEqual, "Promociones")
			convey.So(model.CategoryTitle("otros"), convey.ShouldEqual, "otros")
		})
	})

	convey.Convey("Given a menu document that is not an object", t, func() {
		var menu model.MenuCatalog
		err := json.Unmarshal([]byte(`[1,2]`), &menu)

		convey.Convey("Then decoding fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an empty or null price", t, func() {
		var items []model.MenuItem
		err := json.Unmarshal([]byte(`[{"id":"a","precio":""},{"id":"b","precio":null}]`), &items)

		convey.Convey("Then neither is present", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(items[0].Precio.Present(), convey.ShouldBeFalse)
			convey.So(items[1].Precio.Present(), convey.ShouldBeFalse)
		})
	})
}

func TestGallery(t *testing.T) {
	convey.Convey("Given data/galeria.json", t, func() {
		raw := `{"mesas":["a.jpg","b.jpg"],"bad":{"x":1},"barra":["c.jpg"]}`

		var g model.Gallery
		err := json.Unmarshal([]byte(raw), &g)

		convey.Convey("Then entries keep order and non-lists are skipped", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(g, convey.ShouldResemble, model.Gallery{
				{Category: "mesas", Files: []string{"a.jpg", "b.jpg"}},
				{Category: "barra", Files: []string{"c.jpg"}},
			})
		})
	})

	convey.Convey("Given the fallback gallery", t, func() {
		g := model.FallbackGallery()

		convey.Convey("Then it lists four categories of two files", func() {
			convey.So(g, convey.ShouldHaveLength, 4)
			convey.So(g[0].Category, convey.ShouldEqual, "instalaciones")
			convey.So(g[3].Files, convey.ShouldResemble, []string{"ceremonia_ganadores.jpg", "accion_torneo.jpg"})
		})
	})
}

func TestContactMetadata(t *testing.T) {
	convey.Convey("Given contact metadata", t, func() {
		var m model.ContactMetadata
		err := json.Unmarshal([]byte(`{
			"social": {"instagram":"https://instagram.com/montpellier","facebook":"","whatsapp_profile":"https://wa.me/573001112233"},
			"footer": {"phone_display":"","email_display":"hola@montpellier.co"},
			"contact_phones": ["+57 300 111 2233"],
			"contact_emails": ["info@montpellier.co"],
			"whatsapp_buttons": [{"label":"Reservas","number":"+57 (300) 111-2233","prefilled_message":"Hola, quiero reservar una mesa & algo más"}]
		}`), &m)

		convey.Convey("Then footer strings fall back to the lists", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(m.FooterPhone(), convey.ShouldEqual, "+57 300 111 2233")
			convey.So(m.FooterEmail(), convey.ShouldEqual, "hola@montpellier.co")
			convey.So(m.Telephone(), convey.ShouldEqual, "+57 300 111 2233")
			convey.So(m.Email(), convey.ShouldEqual, "info@montpellier.co")
			convey.So(m.SameAs(), convey.ShouldResemble, []string{"https://instagram.com/montpellier"})
		})

		convey.Convey("Then WhatsApp links keep digits and encode the message", func() {
			convey.So(m.FloatURL(), convey.ShouldEqual,
				"https://wa.me/573001112233?text=Hola%2C%20quiero%20reservar%20una%20mesa%20%26%20algo%20m%C3%A1s")
			convey.So(m.WhatsAppButtons[0].Text(), convey.ShouldEqual, "Reservas")
		})

		convey.Convey("Then without buttons the float link is the profile", func() {
			m.WhatsAppButtons = nil
			convey.So(m.FloatURL(), convey.ShouldEqual, "https://wa.me/573001112233")
		})
	})

	convey.Convey("Given URI component encoding", t, func() {
		convey.So(model.EncodeURIComponent("a b!~*'()-_."), convey.ShouldEqual, "a%20b!~*'()-_.")
		convey.So(model.EncodeURIComponent("/?#=+"), convey.ShouldEqual, "%2F%3F%23%3D%2B")
		convey.So(model.WhatsAppURL("300", ""), convey.ShouldEqual, "https://wa.me/300")
		convey.So(model.WhatsAppButton{Number: "300"}.Text(), convey.ShouldEqual, "300")
	})
}
