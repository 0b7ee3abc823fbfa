package models

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To          string
	ToName      string
	Subject     string
	Content     string
	HTMLContent string
}
