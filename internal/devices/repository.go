package devices

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
)

// Repository provides database operations for the cast device registry
type Repository struct {
	db     *Database
	logger *logger.Logger
}

// NewRepository creates a new repository instance
func NewRepository(db *Database, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

// List returns all known devices, favorites first, then by name
func (r *Repository) List() ([]models.CastDevice, error) {
	var rows []Device
	if err := r.db.GetDB().Order("is_favorite DESC, name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]models.CastDevice, 0, len(rows))
	for _, row := range rows {
		devices = append(devices, row.ToModel())
	}
	return devices, nil
}

// Get returns a single device by ID, or nil when unknown
func (r *Repository) Get(id string) (*models.CastDevice, error) {
	var row Device
	err := r.db.GetDB().First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	device := row.ToModel()
	return &device, nil
}

// Reconcile merges a discovery result into the registry. Discovered
// devices are upserted with a fresh last-seen time; favorite and manual
// flags on existing rows are preserved.
func (r *Repository) Reconcile(discovered []models.CastDevice) error {
	now := time.Now()
	err := r.db.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, d := range discovered {
			var existing Device
			err := tx.First(&existing, "id = ?", d.ID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := fromModel(d)
				row.LastSeenAt = now
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("failed to create device %s: %w", d.ID, err)
				}
			case err != nil:
				return fmt.Errorf("failed to look up device %s: %w", d.ID, err)
			default:
				updates := map[string]interface{}{
					"name":         d.Name,
					"address":      d.Address,
					"port":         d.Port,
					"model":        d.Model,
					"device_type":  d.DeviceType,
					"last_seen_at": now,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("failed to update device %s: %w", d.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Device registry reconciled", map[string]interface{}{
		"discovered": len(discovered),
	})
	return nil
}

// AddManual registers a device that discovery cannot see, keyed by
// address and port
func (r *Repository) AddManual(name, address string, port int) (*models.CastDevice, error) {
	if name == "" || address == "" {
		return nil, fmt.Errorf("manual device requires a name and address")
	}
	if port <= 0 {
		port = 8009
	}

	row := Device{
		ID:         fmt.Sprintf("manual-%s-%d", address, port),
		Name:       name,
		Address:    address,
		Port:       port,
		IsManual:   true,
		LastSeenAt: time.Now(),
	}
	if err := r.db.GetDB().Save(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to save manual device: %w", err)
	}

	r.logger.Info("Manual cast device added", map[string]interface{}{
		"name":    name,
		"address": address,
		"port":    port,
	})
	device := row.ToModel()
	return &device, nil
}

// SetFavorite toggles the favorite flag on a device
func (r *Repository) SetFavorite(id string, favorite bool) error {
	result := r.db.GetDB().Model(&Device{}).Where("id = ?", id).Update("is_favorite", favorite)
	if result.Error != nil {
		return fmt.Errorf("failed to update favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("device not found: %s", id)
	}
	return nil
}

// Delete removes a device from the registry
func (r *Repository) Delete(id string) error {
	result := r.db.GetDB().Delete(&Device{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("device not found: %s", id)
	}
	return nil
}

// PruneStale removes non-favorite discovered devices not seen since the
// cutoff. Manual and favorite devices are never pruned.
func (r *Repository) PruneStale(cutoff time.Time) (int64, error) {
	result := r.db.GetDB().
		Where("is_manual = ? AND is_favorite = ? AND last_seen_at < ?", false, false, cutoff).
		Delete(&Device{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune stale devices: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Info("Pruned stale cast devices", map[string]interface{}{
			"count": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
