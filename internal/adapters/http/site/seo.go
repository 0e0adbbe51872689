package site

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/montpellier/internal/domain/contact"
	"github.com/okian/montpellier/internal/domain/model"
)

const (
	siteName           = "Billiards Montpellier"
	defaultDescription = "Billiards Montpellier - Bar & Club de billar"
	defaultImage       = "./img/hero-banner.jpg"
	streetAddress      = "Cra. 82 #22f 45"
	maxDescription     = 160
	ldMarker           = "site-seo"
)

// SEO writes the canonical link, Open Graph and Twitter tags and a JSON-LD
// LocalBusiness description into the page head.
type SEO struct {
	head        *html.Node
	pageURL     *url.URL
	title       string
	description string
	image       string

	metadata func() (model.ContactMetadata, error)
}

type postalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
}

type localBusiness struct {
	Context     string        `json:"@context"`
	Type        string        `json:"@type"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Description string        `json:"description"`
	Telephone   string        `json:"telephone"`
	Email       string        `json:"email"`
	Image       string        `json:"image"`
	Address     postalAddress `json:"address"`
	SameAs      []string      `json:"sameAs,omitempty"`
}

// newSEO reads everything it needs from the template before any section
// starts writing.
func newSEO(doc *goquery.Document, pageURL *url.URL, metadata func() (model.ContactMetadata, error)) *SEO {
	sel := doc.Find("head")
	if sel.Length() == 0 {
		return nil
	}

	docTitle := strings.TrimSpace(doc.Find("title").First().Text())
	title := docTitle
	if title == "" {
		title = strings.TrimSpace(doc.Find(".section .section-title").First().Text())
	}
	if title == "" {
		title = siteName
	}

	description := doc.Find(`meta[name="description"]`).AttrOr("content", "")
	if description == "" {
		if p := strings.TrimSpace(doc.Find(".section p").First().Text()); p != "" {
			description = contact.Clean(p, maxDescription)
		} else if docTitle != "" {
			description = docTitle
		} else {
			description = defaultDescription
		}
	}

	image := doc.Find(".hero-background img").First().AttrOr("src", "")
	if image == "" {
		image = doc.Find("img").First().AttrOr("src", "")
	}
	if image == "" {
		image = defaultImage
	}
	if ref, err := url.Parse(image); err == nil {
		image = pageURL.ResolveReference(ref).String()
	}

	return &SEO{
		head:        sel.Nodes[0],
		pageURL:     pageURL,
		title:       title,
		description: description,
		image:       image,
		metadata:    metadata,
	}
}

// Name implements section.
func (s *SEO) Name() string { return "seo" }

// Load implements section. Missing contact metadata only empties the
// telephone and email of the structured data.
func (s *SEO) Load(_ context.Context) ([]imageJob, error) {
	canonical := *s.pageURL
	canonical.Fragment = ""
	href := canonical.String()

	s.link("canonical", href)
	s.meta("property", "og:title", s.title)
	s.meta("property", "og:description", s.description)
	s.meta("name", "twitter:title", s.title)
	s.meta("name", "twitter:description", s.description)
	s.meta("property", "og:type", "website")
	s.meta("name", "twitter:card", "summary_large_image")
	s.meta("property", "og:url", href)
	s.meta("property", "og:image", s.image)
	s.meta("name", "twitter:image", s.image)

	m, err := s.metadata()
	if err != nil {
		m = model.ContactMetadata{}
	}
	return nil, s.structuredData(m)
}

// Finish implements section.
func (s *SEO) Finish() {}

func (s *SEO) structuredData(m model.ContactMetadata) error {
	site := url.URL{Scheme: s.pageURL.Scheme, Host: s.pageURL.Host, Path: strings.TrimSuffix(s.pageURL.Path, "index.html")}
	ld := localBusiness{
		Context:     "https://schema.org",
		Type:        "LocalBusiness",
		Name:        siteName,
		URL:         site.String(),
		Description: s.description,
		Telephone:   m.Telephone(),
		Email:       m.Email(),
		Image:       s.image,
		Address:     postalAddress{Type: "PostalAddress", StreetAddress: streetAddress},
		SameAs:      m.SameAs(),
	}
	// json escapes <, > and & so the payload cannot close the script element.
	raw, err := json.MarshalIndent(ld, "", "  ")
	if err != nil {
		return err
	}

	script := s.find(func(n *html.Node) bool {
		return n.DataAtom == atom.Script && attr(n, "data-generated-by") == ldMarker
	})
	if script == nil {
		script = newElement(atom.Script, "type", "application/ld+json", "data-generated-by", ldMarker)
		s.head.AppendChild(script)
	}
	empty(script)
	script.AppendChild(newText(string(raw)))
	return nil
}

// meta sets the content of <meta key=name>, creating it when missing.
// Empty content leaves the head untouched.
func (s *SEO) meta(key, name, content string) {
	if content == "" {
		return
	}
	el := s.find(func(n *html.Node) bool {
		return n.DataAtom == atom.Meta && attr(n, key) == name
	})
	if el == nil {
		el = newElement(atom.Meta, key, name)
		s.head.AppendChild(el)
	}
	setAttr(el, "content", content)
}

func (s *SEO) link(rel, href string) {
	el := s.find(func(n *html.Node) bool {
		return n.DataAtom == atom.Link && attr(n, "rel") == rel
	})
	if el == nil {
		el = newElement(atom.Link, "rel", rel)
		s.head.AppendChild(el)
	}
	setAttr(el, "href", href)
}

// find returns the first head element matching match.
func (s *SEO) find(match func(*html.Node) bool) *html.Node {
	for n := s.head.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}
