package devices

import (
	"time"

	"github.com/Dastari/librarian/internal/models"
)

// Device is a known cast device. Discovered devices are upserted on every
// discovery pass; manual devices survive even when discovery never sees
// them.
type Device struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Address    string    `json:"address"`
	Port       int       `json:"port"`
	Model      string    `json:"model,omitempty"`
	DeviceType string    `json:"device_type,omitempty"`
	IsFavorite bool      `gorm:"default:false" json:"is_favorite"`
	IsManual   bool      `gorm:"default:false" json:"is_manual"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToModel converts the stored row to the shared device model
func (d Device) ToModel() models.CastDevice {
	return models.CastDevice{
		ID:         d.ID,
		Name:       d.Name,
		Address:    d.Address,
		Port:       d.Port,
		Model:      d.Model,
		DeviceType: d.DeviceType,
		IsFavorite: d.IsFavorite,
		IsManual:   d.IsManual,
		LastSeenAt: d.LastSeenAt,
	}
}

func fromModel(m models.CastDevice) Device {
	return Device{
		ID:         m.ID,
		Name:       m.Name,
		Address:    m.Address,
		Port:       m.Port,
		Model:      m.Model,
		DeviceType: m.DeviceType,
		IsFavorite: m.IsFavorite,
		IsManual:   m.IsManual,
		LastSeenAt: m.LastSeenAt,
	}
}
