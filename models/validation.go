package models

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	spotifyTrackRegex = regexp.MustCompile(`^https://open\.spotify\.com/track/[a-zA-Z0-9]+$`)
	phoneRegex        = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	registerOnce sync.Once
)

// RegisterValidators installs the custom binding tags used by the request
// types of this package. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("spotify_track", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || spotifyTrackRegex.MatchString(s)
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phoneRegex.MatchString(fl.Field().String())
		})
	})
}
