package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateQuoteRoots backfills root_id and version on quote records created
// before revisioning existed. Such records have an empty root_id; each becomes
// the first (and only) revision of its own cluster. Safe to call on every
// startup -- returns early if nothing to migrate.
func MigrateQuoteRoots(app *pocketbase.PocketBase) error {
	legacy, err := app.FindRecordsByFilter(
		"quotes",
		"root_id = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query legacy quotes: %w", err)
	}

	if len(legacy) == 0 {
		return nil
	}

	log.Printf("migrate: found %d quote(s) without a root_id -- backfilling...\n", len(legacy))

	for _, quote := range legacy {
		quote.Set("root_id", quote.Id)
		if quote.GetInt("version") == 0 {
			quote.Set("version", 1)
		}
		if err := app.Save(quote); err != nil {
			log.Printf("migrate: failed to backfill quote %s: %v\n", quote.Id, err)
			continue
		}
	}

	log.Println("migrate: quote root backfill complete.")
	return nil
}
