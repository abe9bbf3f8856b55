package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/models"
)

// StartTokenSweeper launches a background goroutine that periodically deletes
// expired session tokens. The auth guard already deletes an expired token the
// first time it is presented; the sweeper reclaims rows for tokens that are
// never presented again. Best-effort, failures are logged.
func StartTokenSweeper(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			res := db.Where("expires_at <= ?", time.Now()).Delete(&models.Token{})
			if res.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("token sweeper failed: %v", res.Error)
				}
				continue
			}
			if res.RowsAffected > 0 && Sugar != nil {
				Sugar.Infof("token sweeper removed %d expired tokens", res.RowsAffected)
			}
		}
	}()
}
