package catalog

import (
	"encoding/json"
	"fmt"

	"ClickerPilot/internal/model"
)

// Decode unmarshals each raw record on its own. Records that do not decode are
// skipped and reported, so one bad entry does not hide the rest of the list.
func Decode(raws []json.RawMessage) ([]model.UpgradeRecord, []error) {
	records := make([]model.UpgradeRecord, 0, len(raws))
	var skipped []error
	for i, raw := range raws {
		var r model.UpgradeRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w: %v", i, ErrMalformedRecord, err))
			continue
		}
		records = append(records, r)
	}
	return records, skipped
}

// Parse decodes raw records and normalizes the ones that decode.
func Parse(raws []json.RawMessage) (*Catalog, []error) {
	records, skipped := Decode(raws)
	cat, invalid := Normalize(records)
	return cat, append(skipped, invalid...)
}
