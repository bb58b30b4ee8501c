package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts either an object or a bare category name. A bare
// name has no identifier.
func (c *Category) UnmarshalJSON(b []byte) error {
	*c = Category{}

	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		c.Name = strings.TrimSpace(name)
		return nil
	}

	f, err := decodeFields(b)
	if err != nil {
		return err
	}
	c.ID, _ = f.num("id")
	c.Name = f.str("name", "title")
	c.CreatedAt = f.when("createdAt", "created_at")
	return nil
}
