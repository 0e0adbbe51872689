package model

// ContactSubmission is the contact form payload.
type ContactSubmission struct {
	Nombre      string `json:"nombre"`
	Email       string `json:"email"`
	Telefono    string `json:"telefono"`
	Comentarios string `json:"comentarios"`
}
