package validation

import (
	"strings"

	"github.com/iliyamo/vidly/internal/model"
)

const genreNameMaxLength = 100

// GenreValidator applies the genre rules.
type GenreValidator struct{}

var _ Validator[*model.Genre] = GenreValidator{}

// Validate checks the genre name.
func (GenreValidator) Validate(g *model.Genre) error {
	var fs Failures
	name := strings.TrimSpace(g.Name)
	fs = fs.add("name", required("Name", name))
	fs = fs.add("name", maxLength("Name", name, genreNameMaxLength))
	return fs.orNil()
}
