package site

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/montpellier/internal/domain/model"
)

// ContactLinks patches the footer, social and WhatsApp links from the
// contact metadata. When the metadata cannot be loaded the template links
// stay as they are.
type ContactLinks struct {
	footerPhone *goquery.Selection
	footerEmail *goquery.Selection
	instagram   *goquery.Selection
	facebook    *goquery.Selection
	waProfile   *goquery.Selection
	floats      *goquery.Selection
	quick       *html.Node

	metadata func() (model.ContactMetadata, error)
}

func newContactLinks(doc *goquery.Document, metadata func() (model.ContactMetadata, error)) *ContactLinks {
	c := &ContactLinks{
		footerPhone: doc.Find("#footer-phone"),
		footerEmail: doc.Find("#footer-email"),
		instagram:   doc.Find(`a[href*="instagram.com"], [data-social="instagram"]`),
		facebook:    doc.Find(`a[href*="facebook.com"], [data-social="facebook"]`),
		waProfile:   doc.Find(`[data-social="whatsapp-profile"]`),
		floats:      doc.Find(".whatsapp-float"),
		quick:       byID(doc, "whatsapp-quick-buttons"),
		metadata:    metadata,
	}
	targets := c.footerPhone.Length() + c.footerEmail.Length() + c.instagram.Length() +
		c.facebook.Length() + c.waProfile.Length() + c.floats.Length()
	if targets == 0 && c.quick == nil {
		return nil
	}
	return c
}

// Name implements section.
func (c *ContactLinks) Name() string { return "contact-links" }

// Load implements section.
func (c *ContactLinks) Load(_ context.Context) ([]imageJob, error) {
	m, err := c.metadata()
	if err != nil {
		return nil, err
	}

	phone := m.FooterPhone()
	c.footerPhone.SetText(phone)
	if phone != "" {
		c.footerPhone.SetAttr("href", "tel:"+model.Digits(phone))
	}

	email := m.FooterEmail()
	c.footerEmail.SetText(email)
	if email != "" {
		c.footerEmail.SetAttr("href", "mailto:"+email)
	}

	if m.Social.Instagram != "" {
		c.instagram.SetAttr("href", m.Social.Instagram)
	}
	if m.Social.Facebook != "" {
		c.facebook.SetAttr("href", m.Social.Facebook)
	}
	if m.Social.WhatsAppProfile != "" {
		c.waProfile.SetAttr("href", m.Social.WhatsAppProfile)
	}
	if u := m.FloatURL(); u != "" {
		c.floats.SetAttr("href", u)
	}

	if c.quick != nil && m.WhatsAppButtons != nil {
		empty(c.quick)
		for _, b := range m.WhatsAppButtons {
			a := newElement(atom.A,
				"class", "whatsapp-quick",
				"href", b.URL(),
				"target", "_blank",
				"rel", "noopener noreferrer",
			)
			a.AppendChild(newText(b.Text()))
			c.quick.AppendChild(a)
		}
	}
	return nil, nil
}

// Finish implements section.
func (c *ContactLinks) Finish() {}
