package specification

import (
	"strings"

	"gorm.io/gorm"
)

// NameContains matches features whose name contains Substring, ignoring case.
// An empty substring matches everything.
type NameContains struct {
	Substring string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	if s.Substring == "" {
		return db
	}
	return db.Where("name_key LIKE ?", "%"+EscapeLike(strings.ToLower(s.Substring))+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so the input is matched literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
