package model

import "time"

// Movie represents a title the store carries, as stored in the `movies`
// table.  ReleaseDate became nullable with the make_release_date_nullable
// migration, so it is a pointer here.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – title of the movie.
//  GenreID         – foreign key into genres.
//  GenreName       – joined genres.name, filled by read queries only.
//  DateAdded       – when the movie was added to the catalogue.
//  ReleaseDate     – theatrical release date (nullable).
//  NumberInStock   – copies owned by the store.
//  NumberAvailable – copies currently on the shelf.
type Movie struct {
    ID              uint64     `json:"id"`                     // movies.id
    Name            string     `json:"name"`                   // movies.name
    GenreID         uint8      `json:"genre_id"`               // movies.genre_id
    GenreName       string     `json:"genre_name,omitempty"`   // genres.name
    DateAdded       time.Time  `json:"date_added"`             // movies.date_added
    ReleaseDate     *time.Time `json:"release_date,omitempty"` // movies.release_date (nullable)
    NumberInStock   uint8      `json:"number_in_stock"`        // movies.number_in_stock
    NumberAvailable uint8      `json:"number_available"`       // movies.number_available
}
