package model

import (
	"strings"
)

// ContactMetadata is data/datos_contacto.json.
type ContactMetadata struct {
	Social          Social           `json:"social"`
	Footer          Footer           `json:"footer"`
	ContactPhones   []string         `json:"contact_phones"`
	ContactEmails   []string         `json:"contact_emails"`
	WhatsAppButtons []WhatsAppButton `json:"whatsapp_buttons"`
}

// Social holds the venue's profile links.
type Social struct {
	Instagram       string `json:"instagram"`
	Facebook        string `json:"facebook"`
	WhatsAppProfile string `json:"whatsapp_profile"`
}

// Footer holds the display strings shown in the page footer.
type Footer struct {
	PhoneDisplay string `json:"phone_display"`
	EmailDisplay string `json:"email_display"`
}

// WhatsAppButton is a quick-reply chat link.
type WhatsAppButton struct {
	Label            string `json:"label"`
	Number           string `json:"number"`
	PrefilledMessage string `json:"prefilled_message"`
}

// URL returns the wa.me chat link for the button.
func (b WhatsAppButton) URL() string {
	return WhatsAppURL(b.Number, b.PrefilledMessage)
}

// Text returns the label, or the number when the label is empty.
func (b WhatsAppButton) Text() string {
	if b.Label != "" {
		return b.Label
	}
	return b.Number
}

// FooterPhone prefers the footer display string over the first listed phone.
func (m ContactMetadata) FooterPhone() string {
	if m.Footer.PhoneDisplay != "" {
		return m.Footer.PhoneDisplay
	}
	return first(m.ContactPhones)
}

// FooterEmail prefers the footer display string over the first listed email.
func (m ContactMetadata) FooterEmail() string {
	if m.Footer.EmailDisplay != "" {
		return m.Footer.EmailDisplay
	}
	return first(m.ContactEmails)
}

// Telephone prefers the first listed phone over the footer display string.
func (m ContactMetadata) Telephone() string {
	if p := first(m.ContactPhones); p != "" {
		return p
	}
	return m.Footer.PhoneDisplay
}

// Email prefers the first listed email over the footer display string.
func (m ContactMetadata) Email() string {
	if e := first(m.ContactEmails); e != "" {
		return e
	}
	return m.Footer.EmailDisplay
}

// SameAs lists the social profiles for structured data.
func (m ContactMetadata) SameAs() []string {
	var out []string
	if m.Social.Instagram != "" {
		out = append(out, m.Social.Instagram)
	}
	if m.Social.Facebook != "" {
		out = append(out, m.Social.Facebook)
	}
	return out
}

// FloatURL is the target of the floating WhatsApp button: the first quick
// button when present, otherwise the profile link.
func (m ContactMetadata) FloatURL() string {
	if len(m.WhatsAppButtons) > 0 {
		return m.WhatsAppButtons[0].URL()
	}
	return m.Social.WhatsAppProfile
}

// WhatsAppURL builds https://wa.me/<digits> with an optional prefilled text.
func WhatsAppURL(number, message string) string {
	u := "https://wa.me/" + Digits(number)
	if message != "" {
		u += "?text=" + EncodeURIComponent(message)
	}
	return u
}

// Digits keeps only ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// EncodeURIComponent percent-encodes every byte except A-Z a-z 0-9 and - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
