package model

// Genre is a movie classification from the `genres` table.  The table is
// seeded by a migration and the ids are small, hence uint8.
type Genre struct {
    ID   uint8  `json:"id"`   // genres.id
    Name string `json:"name"` // genres.name
}
