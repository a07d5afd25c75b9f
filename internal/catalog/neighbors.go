// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package catalog

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// decodeNeighborIDs decodes a stored neighbor-list column into book ids.
//
// Catalog exports encode neighbor lists either as arrays of numeric strings
// (["123", "456"], the common form) or as arrays of bare numbers; both are
// accepted. Entries that do not parse as ids are dropped and counted in
// skipped. A column that is not valid JSON at all returns an error; the
// loader then treats the tier as empty.
func decodeNeighborIDs(raw string) (ids []int64, skipped int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, 0, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return nil, 0, nil
	}

	ids = make([]int64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				skipped++
				continue
			}
			ids = append(ids, id)
		case json.Number:
			id, err := v.Int64()
			if err != nil {
				skipped++
				continue
			}
			ids = append(ids, id)
		default:
			skipped++
		}
	}
	if len(ids) == 0 {
		ids = nil
	}
	return ids, skipped, nil
}
