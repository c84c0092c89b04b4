package service

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordBytes = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	maxNameLength    = 100
	maxSearchLength  = 64
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var usernameRules = []validation.Rule{
	validation.Required,
	validation.Length(3, 32),
	validation.Match(usernamePattern).Error("may only contain letters, digits and underscores"),
}

var nameRules = []validation.Rule{
	validation.Required,
	validation.Length(1, maxNameLength),
}

var passwordRules = []validation.Rule{
	validation.Required,
	validation.By(passwordLength),
}

func passwordLength(value interface{}) error {
	s, _ := value.(string)
	if len(s) < minPasswordBytes || len(s) > maxPasswordBytes {
		return errors.New("must be between 6 and 72 bytes")
	}
	return nil
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			in.Email = nil
		} else {
			in.Email = &email
		}
	}
}

// validate checks every field, including the declared type and size of an
// attached image, so all problems are reported together.
func (in RegisterInput) validate(avatars *avatarUploader) error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, nameRules...),
		validation.Field(&in.LastName, nameRules...),
		validation.Field(&in.Username, usernameRules...),
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.Email, is.Email),
		validation.Field(&in.Image, validation.By(func(value interface{}) error {
			img, _ := value.(*ImageUpload)
			if img == nil {
				return nil
			}
			if msg := avatars.precheck(*img); msg != "" {
				return errors.New(msg)
			}
			return nil
		})),
	))
}

type resetInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (in resetInput) validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Token, validation.Required),
		validation.Field(&in.Password, passwordRules...),
	))
}

func (in *ProfileUpdateInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		if url == "" {
			in.ImageURL = nil
		} else {
			in.ImageURL = &url
		}
	}
}

func (in ProfileUpdateInput) validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, nameRules...),
		validation.Field(&in.LastName, nameRules...),
		validation.Field(&in.Username, usernameRules...),
		validation.Field(&in.ImageURL, is.URL),
	))
}
