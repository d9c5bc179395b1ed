package extract

import "sort"

// assemble dedupes resolved records by bin type, first occurrence winning,
// then sorts ascending by date. The stable sort keeps discovery order for
// same-day collections.
func assemble(records []CollectionRecord, discarded int) (*ResultSet, error) {
	seen := make(map[string]struct{}, len(records))
	unique := make([]CollectionRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Type]; ok {
			continue
		}
		seen[rec.Type] = struct{}{}
		unique = append(unique, rec)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Date.Before(unique[j].Date)
	})

	if len(unique) == 0 {
		return nil, ErrNoCollectionsFound
	}

	return &ResultSet{Records: unique, Discarded: discarded}, nil
}
