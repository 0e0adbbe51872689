package mail

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/okian/montpellier/internal/domain/model"
)

// Fixed texts of the contact notification.
const (
	SenderName     = "Billiards Montpellier - Contacto"
	ContactSubject = "Nuevo mensaje de contacto - Billiards Montpellier"
	footerLine     = "Enviado desde el formulario de contacto de Billiards Montpellier"
)

var strict = bluemonday.StrictPolicy() //nolint:gochecknoglobals // policies are safe for concurrent use

var contactHTML = template.Must(template.New("contact").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #000; color: #fff; padding: 20px; text-align: center; }
.content { background-color: #f5f5f5; padding: 20px; margin-top: 20px; }
.field { margin-bottom: 15px; }
.label { font-weight: bold; color: #e63946; }
.footer { margin-top: 20px; text-align: center; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h2>Nuevo Mensaje de Contacto</h2></div>
<div class="content">
<div class="field"><span class="label">Nombre:</span> {{.Nombre}}</div>
<div class="field"><span class="label">Email:</span> {{.Email}}</div>
<div class="field"><span class="label">Teléfono:</span> {{.Telefono}}</div>
<div class="field"><span class="label">Comentarios:</span><br>
{{.Comentarios}}</div>
</div>
<div class="footer"><p>{{.Footer}}</p></div>
</div>
</body>
</html>
`)) //nolint:gochecknoglobals // parsed once

// ComposeContact builds the notification for a validated submission. The
// submitter becomes Reply-To; comments keep their line breaks in the HTML body.
func ComposeContact(sub model.ContactSubmission, from, to string, now time.Time) (Message, error) {
	var body bytes.Buffer
	err := contactHTML.Execute(&body, struct {
		Nombre, Email, Telefono string
		Comentarios             template.HTML
		Footer                  string
	}{
		Nombre:      sub.Nombre,
		Email:       sub.Email,
		Telefono:    sub.Telefono,
		Comentarios: nl2br(sub.Comentarios),
		Footer:      footerLine,
	})
	if err != nil {
		return Message{}, fmt.Errorf("mail: render contact body: %w", err)
	}

	text := "Nuevo mensaje de contacto recibido:\n\n" +
		"Nombre: " + sub.Nombre + "\n" +
		"Email: " + sub.Email + "\n" +
		"Teléfono: " + sub.Telefono + "\n" +
		"Comentarios: " + sub.Comentarios + "\n\n" +
		footerLine

	return Message{
		From:      mail.Address{Name: SenderName, Address: from},
		To:        []mail.Address{{Address: to}},
		ReplyTo:   &mail.Address{Name: sub.Nombre, Address: sub.Email},
		Subject:   ContactSubject,
		Text:      text,
		HTML:      body.String(),
		Date:      now,
		MessageID: uuid.NewString() + "@" + domainOf(from),
	}, nil
}

// nl2br escapes s so markup stays visible as text, then turns newlines into
// <br>. The strict policy runs over the escaped text and must leave it as is.
func nl2br(s string) template.HTML {
	escaped := html.EscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	clean := strict.Sanitize(escaped)
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>\n")) //nolint:gosec // escaped above
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
