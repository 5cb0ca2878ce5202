package models

import "time"

// Character represents a generated fictional character and its portrait assets.
// Image paths are stored relative to the static serving root with forward
// slashes so records stay portable across hosts.
type Character struct {
	ID            string      `gorm:"primaryKey;size:36" json:"id"`
	Description   string      `gorm:"type:text;not null" json:"description"`
	Name          string      `gorm:"size:255" json:"name,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	BaseImagePath string      `gorm:"size:512" json:"base_image_path,omitempty"`
	// ImageSeed is recorded when the base image is generated so a future
	// provider that accepts seeds can regenerate consistently. It is never
	// sent upstream today.
	ImageSeed  *int64      `json:"image_seed,omitempty"`
	Variations []Variation `gorm:"foreignKey:CharacterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variations"`
}

// Variation is one additional portrait of a character with a different pose,
// expression or setting. Variations are only ever appended, never edited or
// reordered.
type Variation struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	CharacterID string    `gorm:"index;size:36" json:"-"`
	ImagePath   string    `gorm:"size:512;not null" json:"image_path"`
	Pose        string    `gorm:"size:255" json:"pose,omitempty"`
	Expression  string    `gorm:"size:255" json:"expression,omitempty"`
	Setting     string    `gorm:"size:255" json:"setting,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
