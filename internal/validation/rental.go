package validation

import "github.com/iliyamo/vidly/internal/model"

// ReasonNoMovieIDs is reported when a rental request lists no movies.
const ReasonNoMovieIDs = "No Movie Ids have been given."

// RentalRequestValidator checks the shape of a checkout request.  Existence
// and availability of the referenced rows are decided inside the rental
// transaction.
type RentalRequestValidator struct{}

var _ Validator[*model.NewRental] = RentalRequestValidator{}

// Validate checks the customer id and the movie id list.
func (RentalRequestValidator) Validate(r *model.NewRental) error {
	var fs Failures
	if r.CustomerID == 0 {
		fs = fs.add("customer_id", &Failure{Reason: "The CustomerId field is required."})
	}
	if len(r.MovieIDs) == 0 {
		fs = fs.add("movie_ids", &Failure{Reason: ReasonNoMovieIDs})
		return fs.orNil()
	}
	seen := make(map[uint64]bool, len(r.MovieIDs))
	for _, id := range r.MovieIDs {
		if id == 0 || seen[id] {
			fs = fs.add("movie_ids", &Failure{Reason: "One or more MovieIds are invalid."})
			break
		}
		seen[id] = true
	}
	return fs.orNil()
}
