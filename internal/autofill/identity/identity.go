// Package identity builds the seed identity used for username and email
// fields.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// DefaultBase prefixes numbered test accounts: test1, test2, ...
const DefaultBase = "test"

var ErrNoDomain = errors.New("email domain is required")

// Domain normalizes a site host into an email domain.
func Domain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// New derives the email from username and domain.
func New(username, domain string) (filler.Identity, error) {
	domain = Domain(domain)
	if domain == "" {
		return filler.Identity{}, ErrNoDomain
	}
	if username == "" {
		return filler.Identity{}, errors.New("username is required")
	}
	return filler.Identity{Username: username, Email: username + "@" + domain}, nil
}

// Numbered returns the n-th test account, e.g. test3@example.org. Callers that
// check for existing accounts pick n.
func Numbered(base string, n int, domain string) (filler.Identity, error) {
	if base == "" {
		base = DefaultBase
	}
	if n < 1 {
		return filler.Identity{}, fmt.Errorf("account number must be positive, got %d", n)
	}
	return New(fmt.Sprintf("%s%d", base, n), domain)
}

// FromEmail splits a full address into an identity.
func FromEmail(email string) (filler.Identity, error) {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return filler.Identity{}, fmt.Errorf("invalid email address %q", email)
	}
	return filler.Identity{Username: local, Email: email}, nil
}

// Random invents a username. With an empty domain a random one is used too.
func Random(faker *gofakeit.Faker, domain string) filler.Identity {
	username := strings.ToLower(faker.Username())
	domain = Domain(domain)
	if domain == "" {
		domain = faker.DomainName()
	}
	return filler.Identity{Username: username, Email: username + "@" + domain}
}

// Resolve picks the identity from whatever the caller configured: an explicit
// email wins, then username plus domain, then a random account on domain.
func Resolve(username, email, domain string, faker *gofakeit.Faker) (filler.Identity, error) {
	switch {
	case email != "":
		id, err := FromEmail(email)
		if err != nil {
			return filler.Identity{}, err
		}
		if username != "" {
			id.Username = username
		}
		return id, nil
	case username != "":
		return New(username, domain)
	default:
		return Random(faker, domain), nil
	}
}
