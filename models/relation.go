package models

import "time"

// Relation is a locally cached, server-confirmed membership fact linking
// the viewer to an item: favorite or watchlist.
type Relation struct {
	ItemID    string    `db:"item_id" json:"item_id"`
	ItemKind  string    `db:"item_kind" json:"item_kind"`
	Relation  string    `db:"relation" json:"relation"`
	State     bool      `db:"state" json:"state"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
