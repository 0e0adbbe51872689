package cards

import (
	"net/url"

	"github.com/okian/montpellier/internal/domain/slug"
)

// DefaultPlaceholder replaces images that do not resolve.
const DefaultPlaceholder = "./img/placeholder.jpg"

// Image kinds understood by ImagePath.
const (
	KindPlayer = "jugadores"
	KindMenu   = "menu"
	KindEvent  = "eventos"
)

// ImagePath derives the conventional image location of a record from its id.
// Unknown kinds resolve to the placeholder.
func ImagePath(kind, category, id string) string {
	s := slug.Normalize(id)
	switch kind {
	case KindPlayer:
		return "./img/jugadores/" + s + ".jpg"
	case KindMenu:
		return "./img/menu/" + url.PathEscape(category) + "/" + s + ".jpg"
	case KindEvent:
		return "./img/eventos/" + s + ".jpg"
	default:
		return DefaultPlaceholder
	}
}

// GalleryPath is the location of a gallery file.
func GalleryPath(category, file string) string {
	return "./img/galeria/" + url.PathEscape(category) + "/" + url.PathEscape(file)
}
