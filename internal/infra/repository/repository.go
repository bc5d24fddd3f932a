/*
 * file: repository.go
 * package: repository
 * description:
 *     Provides the concrete GORM implementation of the repository ports.
 *     These structs act as adapters, translating domain repository calls into
 *     database-specific queries, allowing the core business logic to remain
 *     decoupled from storage details.
 */

package repository

import (
	"github.com/sirpent/sirpent-go/internal/core/domain"

	"gorm.io/gorm"
)

/*
 * GormMatchRepository is the GORM implementation of the MatchRepository port.
 *
 * Responsibilities:
 *   - Persist completed match outcomes.
 *   - Manage player creation and win/loss/draw bookkeeping.
 */
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository constructs a new GormMatchRepository instance.
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

/*
 * RecordMatch persists a concluded game's outcome.
 *
 * Parameters:
 *   - match (*domain.MatchRecord): The match entity to persist.
 *
 * Returns:
 *   - error: An error if creation fails, otherwise nil.
 */
func (r *GormMatchRepository) RecordMatch(match *domain.MatchRecord) error {
	return r.db.Create(match).Error
}

/*
 * GetOrCreatePlayer retrieves an existing player by name or creates one if
 * not found.
 *
 * Parameters:
 *   - name (string): The player's name.
 *
 * Returns:
 *   - *domain.PlayerRecord: The retrieved or newly created player.
 *   - error: An error if the operation fails.
 */
func (r *GormMatchRepository) GetOrCreatePlayer(name string) (*domain.PlayerRecord, error) {
	var player domain.PlayerRecord
	err := r.db.Where(domain.PlayerRecord{Name: name}).FirstOrCreate(&player).Error
	return &player, err
}

/*
 * UpdatePlayer persists an existing player's updated win/loss/draw counts.
 *
 * Parameters:
 *   - player (*domain.PlayerRecord): The player entity with updated values.
 *
 * Returns:
 *   - error: An error if the update fails, otherwise nil.
 */
func (r *GormMatchRepository) UpdatePlayer(player *domain.PlayerRecord) error {
	return r.db.Save(player).Error
}
