// Package profile holds the candidate contact profile assembled during intake.
package profile

// Profile is a partial contact profile. An empty string means the field is
// not yet known.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Merge combines a base profile with newly extracted fields. Non-empty fields
// in update overwrite the base value; empty fields leave the base untouched.
// Merge is pure and idempotent: Merge(p, u) == Merge(Merge(p, u), u).
func Merge(base, update Profile) Profile {
	result := base
	if update.Name != "" {
		result.Name = update.Name
	}
	if update.Email != "" {
		result.Email = update.Email
	}
	if update.Phone != "" {
		result.Phone = update.Phone
	}
	return result
}

// Complete reports whether all three contact fields are known.
func (p Profile) Complete() bool {
	return p.Name != "" && p.Email != "" && p.Phone != ""
}

// MissingFields returns the human-readable names of unknown fields, in a
// fixed order so prompts are stable across turns.
func (p Profile) MissingFields() []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "Name")
	}
	if p.Email == "" {
		missing = append(missing, "Email")
	}
	if p.Phone == "" {
		missing = append(missing, "Phone")
	}
	return missing
}
