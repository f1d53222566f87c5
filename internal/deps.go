package internal

import (
	"context"
	"io"

	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"gorm.io/gorm"
)

// ConfirmationMailer sends the email-confirmation link. Nil means mail is
// not configured and signup/resend silently skip sending.
type ConfirmationMailer interface {
	SendConfirmation(to, token string) error
}

// AvatarUploader stores an avatar image and returns its public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}

type Deps struct {
	DB       *gorm.DB
	Hasher   *security.Hasher
	Tokens   *security.TokenService
	Users    *repo.UserStore
	Contacts *repo.ContactStore
	Mailer   ConfirmationMailer
	Avatars  AvatarUploader
}
