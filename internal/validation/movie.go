package validation

import (
	"strings"

	"github.com/iliyamo/vidly/internal/model"
)

const (
	movieNameMaxLength = 255
	minNumberInStock   = 1
	maxNumberInStock   = 20
)

// MovieValidator applies the movie form rules.  Whether GenreID refers to
// an existing genre is checked by the caller against the store.
type MovieValidator struct{}

var _ Validator[*model.Movie] = MovieValidator{}

// Validate checks the name, the genre and the stock bounds.
func (MovieValidator) Validate(m *model.Movie) error {
	var fs Failures
	name := strings.TrimSpace(m.Name)
	fs = fs.add("name", required("Name", name))
	fs = fs.add("name", maxLength("Name", name, movieNameMaxLength))
	if m.GenreID == 0 {
		fs = fs.add("genre_id", &Failure{Reason: "The Genre field is required."})
	}
	fs = fs.add("number_in_stock", between("Number in Stock", int(m.NumberInStock), minNumberInStock, maxNumberInStock))
	return fs.orNil()
}
